// server/internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/access"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/models"
)

const claimsKey = "auth_claims"

// Authenticate validates the bearer token and puts its claims in the context.
func Authenticate(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := issuer.ParseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Claims returns the authenticated caller, if any.
func Claims(c *gin.Context) (*auth.JWTClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.JWTClaims)
	return claims, ok
}

// SetClaims is used by tests to bypass token parsing.
func SetClaims(c *gin.Context, claims *auth.JWTClaims) { c.Set(claimsKey, claims) }

// Authorize allows only the listed roles.
func Authorize(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}
		for _, role := range allowedRoles {
			if role == claims.Role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequirePermission allows admins and callers holding perm.
func RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}
		if !access.Can(claims.Role, claims.Permissions, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing permission " + string(perm)})
			return
		}
		c.Next()
	}
}
