// server/internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"sppg-kitchen-api-server/internal/models"
)

// HashCost is the bcrypt cost for new password hashes. Tests lower it.
var HashCost = 12

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID      string              `json:"uid"`
	Username    string              `json:"username"`
	FullName    string              `json:"fullName"`
	Role        models.Role         `json:"role"`
	Permissions []models.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Issuer signs and verifies access tokens with a shared HMAC secret.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

// GenerateJWT issues a token for u carrying its role and permissions.
func (i *Issuer) GenerateJWT(u models.User) (string, error) {
	now := i.Now()
	claims := &JWTClaims{
		UserID:      u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Role:        u.Role,
		Permissions: u.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.Secret)
}

// ParseJWT validates tokenString and returns its claims.
func (i *Issuer) ParseJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.Secret, nil
	}, jwt.WithTimeFunc(i.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
