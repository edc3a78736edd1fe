// Package staff covers volunteers and the login accounts linked to them.
package staff

import (
	"errors"
	"sort"
	"strings"

	"sppg-kitchen-api-server/internal/access"
	"sppg-kitchen-api-server/internal/models"
)

// DefaultVolunteerPassword is given to volunteer accounts created without one.
const DefaultVolunteerPassword = "MBG123"

const orphanPrefix = "orphan-"

var (
	ErrNameRequired     = errors.New("name is required")
	ErrUnknownDivision  = errors.New("unknown division")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTaken    = errors.New("username already used")
	ErrMasterAdmin      = errors.New("the master admin account cannot be removed")
)

// Entry is one line of the volunteer roster.
type Entry struct {
	models.Volunteer
	Username    string              `json:"username,omitempty"`
	Permissions []models.Permission `json:"permissions,omitempty"`
	HasAccount  bool                `json:"hasAccount"`
	// Orphan marks a RELAWAN account with no volunteer record behind it.
	Orphan bool `json:"orphan"`
}

// Roster lists volunteers with their account details, followed by RELAWAN
// accounts that no volunteer points at. An empty division means all.
func Roster(volunteers []models.Volunteer, users []models.User, division models.Division) []Entry {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	linked := make(map[string]bool)

	var out []Entry
	for _, v := range volunteers {
		e := Entry{Volunteer: v}
		if u, ok := byID[v.UserID]; ok && v.UserID != "" {
			linked[u.ID] = true
			e.HasAccount = true
			e.Username = u.Username
			e.Permissions = u.Permissions
		}
		if division == "" || v.Division == division {
			out = append(out, e)
		}
	}

	var orphans []Entry
	for _, u := range users {
		if u.Role != models.RoleRelawan || linked[u.ID] {
			continue
		}
		e := Entry{
			Volunteer: models.Volunteer{
				ID:       orphanPrefix + u.ID,
				Name:     u.FullName,
				Division: models.DivisionDistribusi,
				Status:   models.VolunteerActive,
				UserID:   u.ID,
			},
			Username:    u.Username,
			Permissions: u.Permissions,
			HasAccount:  true,
			Orphan:      true,
		}
		if division == "" || e.Division == division {
			orphans = append(orphans, e)
		}
	}
	sort.SliceStable(orphans, func(i, j int) bool { return orphans[i].Name < orphans[j].Name })
	return append(out, orphans...)
}

// OrphanUserID returns the account id behind a synthetic roster id.
func OrphanUserID(rosterID string) (string, bool) {
	return strings.CutPrefix(rosterID, orphanPrefix)
}

// Validate checks a volunteer before it is stored.
func Validate(v models.Volunteer) error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrNameRequired
	}
	if !v.Division.Valid() {
		return ErrUnknownDivision
	}
	return nil
}

// UsernameTaken reports whether another account (not exceptID) already uses
// username, ignoring case.
func UsernameTaken(users []models.User, username, exceptID string) bool {
	for _, u := range users {
		if u.ID != exceptID && strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return true
		}
	}
	return false
}

// AccountRequest describes the login a volunteer should have.
type AccountRequest struct {
	Username     string
	PasswordHash string // empty keeps the current password
	Permissions  []models.Permission
}

// LinkAccount builds the RELAWAN account for v. When current is non-nil the
// account is updated in place, otherwise a new one with id is returned. Nil
// permissions fall back to the division defaults.
func LinkAccount(v models.Volunteer, current *models.User, id string, req AccountRequest, users []models.User) (models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	except := ""
	if current != nil {
		except = current.ID
	}
	if UsernameTaken(users, username, except) {
		return models.User{}, ErrUsernameTaken
	}

	perms := req.Permissions
	if perms == nil {
		perms = access.DivisionDefaults(v.Division)
	}

	u := models.User{ID: id, Role: models.RoleRelawan}
	if current != nil {
		u = *current
	}
	u.Username = username
	u.FullName = v.Name
	u.Role = models.RoleRelawan
	u.Permissions = access.Normalize(perms)
	if req.PasswordHash != "" {
		u.Password = req.PasswordHash
	}
	return u, nil
}

// CanDeleteUser guards account removal.
func CanDeleteUser(u models.User) error {
	if u.ID == models.MasterAdminID {
		return ErrMasterAdmin
	}
	return nil
}

// StaffOnly filters out volunteer accounts, as the staff screen does.
func StaffOnly(users []models.User) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role != models.RoleRelawan {
			out = append(out, u)
		}
	}
	return out
}
