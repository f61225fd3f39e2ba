package auth

import "slices"

// Permission is a named capability.
type Permission string

const (
	PermPresenceWrite Permission = "presence:write" // own presence only
	PermSeatClaim     Permission = "seat:claim"     // own seat only
	PermSeatAdmin     Permission = "seat:admin"     // vacate any seat
	PermJournalRead   Permission = "journal:read"
)

// rolePermissions is the whole authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleGuest: {
		PermPresenceWrite,
		PermSeatClaim,
	},
	RoleStaff: {
		PermPresenceWrite,
		PermSeatClaim,
		PermSeatAdmin,
		PermJournalRead,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	return slices.Contains(rolePermissions[role], perm)
}

// PermissionsForRole returns a copy of the role's permissions, or nil for
// an unknown role.
func PermissionsForRole(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}
