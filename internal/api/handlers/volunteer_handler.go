// server/internal/api/handlers/volunteer_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/staff"
	"sppg-kitchen-api-server/internal/store"
)

type VolunteerHandler struct {
	Volunteers *store.Repository[models.Volunteer]
	Users      *store.Repository[models.User]
	Clock      clock.Clock
	NewID      func() string
}

type VolunteerRequest struct {
	Name          string                 `json:"name" binding:"required"`
	Division      models.Division        `json:"division" binding:"required"`
	Phone         string                 `json:"phone"`
	IsCoordinator bool                   `json:"isCoordinator"`
	Status        models.VolunteerStatus `json:"status"`
	GiveAccess    bool                   `json:"giveAccess"`
	Username      string                 `json:"username"`
	Password      string                 `json:"password"`
	// Nil means the division defaults.
	Permissions []models.Permission `json:"permissions"`
}

// ListVolunteers returns the roster, optionally for ?division=.
func (h *VolunteerHandler) ListVolunteers(c *gin.Context) {
	division := models.Division(strings.ToUpper(c.Query("division")))
	if division != "" && !division.Valid() {
		respondError(c, staff.ErrUnknownDivision)
		return
	}
	c.JSON(http.StatusOK, orEmpty(staff.Roster(h.Volunteers.List(), h.Users.List(), division)))
}

func (h *VolunteerHandler) CreateVolunteer(c *gin.Context) {
	var req VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := models.Volunteer{
		ID:            h.NewID(),
		Name:          strings.TrimSpace(req.Name),
		Division:      req.Division,
		Phone:         req.Phone,
		IsCoordinator: req.IsCoordinator,
		Status:        models.VolunteerActive,
		JoinedAt:      h.Clock.Now(),
	}
	if req.Status != "" {
		v.Status = req.Status
	}
	if err := staff.Validate(v); err != nil {
		respondError(c, err)
		return
	}
	if req.GiveAccess {
		u, err := h.createAccount(c.Request.Context(), v, req)
		if err != nil {
			respondError(c, err)
			return
		}
		v.UserID = u.ID
	}
	if err := h.Volunteers.Create(c.Request.Context(), v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateVolunteer edits a volunteer and grants, changes or revokes its
// account. Editing an orphan account's roster line creates the volunteer
// record behind it.
func (h *VolunteerHandler) UpdateVolunteer(c *gin.Context) {
	var req VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	var (
		v      models.Volunteer
		exists bool
	)
	if uid, orphan := staff.OrphanUserID(id); orphan {
		if _, err := h.Users.Get(uid); err != nil {
			respondError(c, err)
			return
		}
		v = models.Volunteer{ID: h.NewID(), Status: models.VolunteerActive, JoinedAt: h.Clock.Now(), UserID: uid}
	} else {
		current, err := h.Volunteers.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		v, exists = current, true
	}

	v.Name = strings.TrimSpace(req.Name)
	v.Division = req.Division
	v.Phone = req.Phone
	v.IsCoordinator = req.IsCoordinator
	if req.Status != "" {
		v.Status = req.Status
	}
	if err := staff.Validate(v); err != nil {
		respondError(c, err)
		return
	}

	if v.UserID == models.MasterAdminID {
		respondError(c, staff.ErrMasterAdmin)
		return
	}

	var err error
	switch {
	case req.GiveAccess && v.UserID != "":
		err = h.updateAccount(ctx, v, req)
		if errors.Is(err, store.ErrNotFound) {
			var u models.User
			u, err = h.createAccount(ctx, v, req)
			v.UserID = u.ID
		}
	case req.GiveAccess:
		var u models.User
		u, err = h.createAccount(ctx, v, req)
		v.UserID = u.ID
	case v.UserID != "":
		_, _ = h.Users.Delete(ctx, v.UserID)
		v.UserID = ""
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if exists {
		v, _, err = h.Volunteers.Update(ctx, v.ID, func(models.Volunteer) (models.Volunteer, bool, error) {
			return v, true, nil
		})
	} else {
		err = h.Volunteers.Create(ctx, v)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteVolunteer removes the volunteer and its linked account.
func (h *VolunteerHandler) DeleteVolunteer(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if uid, orphan := staff.OrphanUserID(id); orphan {
		if _, err := h.Users.Delete(ctx, uid); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Volunteer account deleted"})
		return
	}
	v, err := h.Volunteers.Delete(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if v.UserID != "" && v.UserID != models.MasterAdminID {
		_, _ = h.Users.Delete(ctx, v.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Volunteer deleted successfully"})
}

func (h *VolunteerHandler) accountRequest(req VolunteerRequest, newAccount bool) (staff.AccountRequest, error) {
	ar := staff.AccountRequest{Username: req.Username, Permissions: req.Permissions}
	password := req.Password
	if password == "" && newAccount {
		password = staff.DefaultVolunteerPassword
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return ar, err
		}
		ar.PasswordHash = hash
	}
	return ar, nil
}

func (h *VolunteerHandler) createAccount(ctx context.Context, v models.Volunteer, req VolunteerRequest) (models.User, error) {
	ar, err := h.accountRequest(req, true)
	if err != nil {
		return models.User{}, err
	}
	created, err := h.Users.CreateWith(ctx, func(existing []models.User) ([]models.User, error) {
		u, err := staff.LinkAccount(v, nil, h.NewID(), ar, existing)
		if err != nil {
			return nil, err
		}
		return []models.User{u}, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created[0], nil
}

func (h *VolunteerHandler) updateAccount(ctx context.Context, v models.Volunteer, req VolunteerRequest) error {
	ar, err := h.accountRequest(req, false)
	if err != nil {
		return err
	}
	all := h.Users.List()
	_, _, err = h.Users.Update(ctx, v.UserID, func(u models.User) (models.User, bool, error) {
		next, err := staff.LinkAccount(v, &u, u.ID, ar, all)
		return next, err == nil, err
	})
	return err
}
