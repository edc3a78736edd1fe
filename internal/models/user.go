package models

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleAkuntan     Role = "AKUNTAN"
	RoleKaSPPG      Role = "KA_SPPG"
	RoleAhliGizi    Role = "AHLI_GIZI"
	RoleAdminGudang Role = "ADMIN_GUDANG"
	RoleMitra       Role = "MITRA"
	RoleRelawan     Role = "RELAWAN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAkuntan, RoleKaSPPG, RoleAhliGizi, RoleAdminGudang, RoleMitra, RoleRelawan:
		return true
	}
	return false
}

type Permission string

const (
	PermReceive     Permission = "CAN_RECEIVE"
	PermOrder       Permission = "CAN_ORDER"
	PermDistribute  Permission = "CAN_DISTRIBUTE"
	PermManageStock Permission = "CAN_MANAGE_STOCK"
	PermCreateMenu  Permission = "CAN_CREATE_MENU"
)

// AllPermissions is the closed permission set.
var AllPermissions = []Permission{PermReceive, PermOrder, PermDistribute, PermManageStock, PermCreateMenu}

func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// MasterAdminID identifies the built-in administrator that can never be deleted.
const MasterAdminID = "master-admin"

// User is a login account. Password holds a bcrypt hash and never leaves the server.
type User struct {
	ID          string       `bson:"_id" json:"id"`
	Username    string       `bson:"username" json:"username"`
	Password    string       `bson:"password" json:"password,omitempty"`
	FullName    string       `bson:"fullName" json:"fullName"`
	Role        Role         `bson:"role" json:"role"`
	Permissions []Permission `bson:"permissions" json:"permissions"`
}

func (u User) EntityID() string { return u.ID }

// Public strips the password hash for API responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
