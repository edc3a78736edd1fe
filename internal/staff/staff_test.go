package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppg-kitchen-api-server/internal/models"
)

var users = []models.User{
	{ID: models.MasterAdminID, Username: "aslap", Role: models.RoleAdmin},
	{ID: "u1", Username: "andi", FullName: "Andi", Role: models.RoleRelawan, Permissions: []models.Permission{models.PermDistribute}},
	{ID: "u2", Username: "wati", FullName: "Wati", Role: models.RoleRelawan},
	{ID: "u3", Username: "gizi", FullName: "Dewi", Role: models.RoleAhliGizi},
}

var volunteers = []models.Volunteer{
	{ID: "v1", Name: "Andi", Division: models.DivisionDistribusi, UserID: "u1"},
	{ID: "v2", Name: "Rina", Division: models.DivisionPacking},
}

func TestRoster_MergesOrphans(t *testing.T) {
	got := Roster(volunteers, users, "")
	require.Len(t, got, 3)

	assert.Equal(t, "v1", got[0].ID)
	assert.True(t, got[0].HasAccount)
	assert.Equal(t, "andi", got[0].Username)

	assert.False(t, got[1].HasAccount)

	assert.Equal(t, "orphan-u2", got[2].ID)
	assert.True(t, got[2].Orphan)
	assert.Equal(t, models.DivisionDistribusi, got[2].Division)

	id, ok := OrphanUserID(got[2].ID)
	assert.True(t, ok)
	assert.Equal(t, "u2", id)
}

func TestRoster_DivisionFilter(t *testing.T) {
	got := Roster(volunteers, users, models.DivisionPacking)
	require.Len(t, got, 1)
	assert.Equal(t, "Rina", got[0].Name)
}

func TestLinkAccount_NewUsesDivisionDefaults(t *testing.T) {
	v := models.Volunteer{ID: "v9", Name: "Joko", Division: models.DivisionPurchasing}
	u, err := LinkAccount(v, nil, "u9", AccountRequest{Username: "joko", PasswordHash: "hash"}, users)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRelawan, u.Role)
	assert.Equal(t, "Joko", u.FullName)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, []models.Permission{models.PermReceive, models.PermOrder}, u.Permissions)
}

func TestLinkAccount_UpdateKeepsPassword(t *testing.T) {
	current := users[1]
	current.Password = "old-hash"
	u, err := LinkAccount(volunteers[0], &current, "ignored", AccountRequest{
		Username:    "andi",
		Permissions: []models.Permission{models.PermDistribute, models.PermManageStock},
	}, users)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "old-hash", u.Password)
	assert.Len(t, u.Permissions, 2)
}

func TestLinkAccount_UsernameRules(t *testing.T) {
	v := models.Volunteer{Name: "X", Division: models.DivisionPacking}
	_, err := LinkAccount(v, nil, "n", AccountRequest{Username: "  "}, users)
	assert.ErrorIs(t, err, ErrUsernameRequired)
	_, err = LinkAccount(v, nil, "n", AccountRequest{Username: "ASLAP"}, users)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestValidateAndGuards(t *testing.T) {
	assert.ErrorIs(t, Validate(models.Volunteer{Division: models.DivisionPacking}), ErrNameRequired)
	assert.ErrorIs(t, Validate(models.Volunteer{Name: "a", Division: "DAPUR"}), ErrUnknownDivision)
	assert.NoError(t, Validate(models.Volunteer{Name: "a", Division: models.DivisionKeamanan}))

	assert.ErrorIs(t, CanDeleteUser(users[0]), ErrMasterAdmin)
	assert.NoError(t, CanDeleteUser(users[3]))

	assert.Len(t, StaffOnly(users), 2)
}
