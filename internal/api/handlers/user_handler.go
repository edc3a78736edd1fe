// server/internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/access"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/staff"
	"sppg-kitchen-api-server/internal/store"
)

type UserHandler struct {
	Users      *store.Repository[models.User]
	Volunteers *store.Repository[models.Volunteer]
	NewID      func() string
	Log        *zap.Logger
}

type UserRequest struct {
	Username    string              `json:"username" binding:"required"`
	Password    string              `json:"password"`
	FullName    string              `json:"fullName" binding:"required"`
	Role        models.Role         `json:"role" binding:"required"`
	Permissions []models.Permission `json:"permissions"`
}

var errRoleUnknown = errors.New("unknown role")

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// ListUsers returns staff accounts; ?all=true includes volunteer accounts.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users := h.Users.List()
	if c.Query("all") != "true" {
		users = staff.StaffOnly(users)
	}
	c.JSON(http.StatusOK, publicUsers(orEmpty(users)))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRoleUnknown.Error()})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		ID:          h.NewID(),
		Username:    strings.TrimSpace(req.Username),
		Password:    hash,
		FullName:    strings.TrimSpace(req.FullName),
		Role:        req.Role,
		Permissions: access.Effective(req.Role, req.Permissions),
	}
	_, err = h.Users.CreateWith(c.Request.Context(), func(existing []models.User) ([]models.User, error) {
		if staff.UsernameTaken(existing, user.Username, "") {
			return nil, staff.ErrUsernameTaken
		}
		return []models.User{user}, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.Log.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user.Public())
}

// UpdateUser replaces profile, role and permissions. An empty password keeps
// the current one.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRoleUnknown.Error()})
		return
	}
	id := c.Param("id")
	if id == models.MasterAdminID && req.Role != models.RoleAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "the master admin must keep the ADMIN role"})
		return
	}
	if staff.UsernameTaken(h.Users.List(), req.Username, id) {
		respondError(c, staff.ErrUsernameTaken)
		return
	}
	var hash string
	if req.Password != "" {
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			respondError(c, err)
			return
		}
	}

	user, _, err := h.Users.Update(c.Request.Context(), id, func(u models.User) (models.User, bool, error) {
		u.Username = strings.TrimSpace(req.Username)
		u.FullName = strings.TrimSpace(req.FullName)
		u.Role = req.Role
		u.Permissions = access.Effective(req.Role, req.Permissions)
		if hash != "" {
			u.Password = hash
		}
		return u, true, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// DeleteUser removes an account and unlinks any volunteer pointing at it.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	user, err := h.Users.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := staff.CanDeleteUser(user); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	for _, v := range h.Volunteers.Filter(func(v models.Volunteer) bool { return v.UserID == id }) {
		_, _, _ = h.Volunteers.Update(c.Request.Context(), v.ID, func(v models.Volunteer) (models.Volunteer, bool, error) {
			v.UserID = ""
			return v, true, nil
		})
	}
	h.Log.Info("user deleted", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
