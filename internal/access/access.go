// Package access answers "may this user do that" from role and permissions.
package access

import "sppg-kitchen-api-server/internal/models"

// Can reports whether a user with role and perms holds want. Admins hold
// everything.
func Can(role models.Role, perms []models.Permission, want models.Permission) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, p := range perms {
		if p == want {
			return true
		}
	}
	return false
}

// Effective returns the full permission set a user holds.
func Effective(role models.Role, perms []models.Permission) []models.Permission {
	if role == models.RoleAdmin {
		return append([]models.Permission(nil), models.AllPermissions...)
	}
	return Normalize(perms)
}

// Normalize drops unknown and repeated permissions, keeping order.
func Normalize(perms []models.Permission) []models.Permission {
	seen := make(map[models.Permission]bool, len(perms))
	out := make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		if !p.Valid() || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

var divisionDefaults = map[models.Division][]models.Permission{
	models.DivisionPersiapan:  {models.PermManageStock},
	models.DivisionPengolahan: {models.PermManageStock},
	models.DivisionDistribusi: {models.PermDistribute},
	models.DivisionPurchasing: {models.PermReceive, models.PermOrder},
}

// DivisionDefaults is the starting permission set for a volunteer account
// in division d.
func DivisionDefaults(d models.Division) []models.Permission {
	return append([]models.Permission{}, divisionDefaults[d]...)
}
