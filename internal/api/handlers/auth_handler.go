// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/api/middleware"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type AuthHandler struct {
	Users  *store.Repository[models.User]
	Issuer *auth.Issuer
	Log    *zap.Logger
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(req.Username)
	matches := h.Users.Filter(func(u models.User) bool { return u.Username == username })
	if len(matches) == 0 || !auth.CheckPasswordHash(req.Password, matches[0].Password) {
		h.Log.Info("login rejected", zap.String("username", username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	user := matches[0]

	token, err := h.Issuer.GenerateJWT(user)
	if err != nil {
		h.Log.Error("sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// Me returns the caller's current account.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	user, err := h.Users.Get(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
