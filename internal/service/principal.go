package service

import "github.com/veritrack/veritrack-api/internal/models"

// Principal is the authenticated actor behind a request. It is passed
// explicitly into every service call; the core never reads identity from
// ambient state.
type Principal struct {
	ID   uint
	Role string
}

// IsStudent reports whether the principal holds the student role.
func (p Principal) IsStudent() bool {
	return p.Role == models.RoleStudent
}

// IsFaculty reports whether the principal holds the faculty role.
func (p Principal) IsFaculty() bool {
	return p.Role == models.RoleFaculty
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanReview reports whether the principal may decide on records at all.
func (p Principal) CanReview() bool {
	return p.IsFaculty() || p.IsAdmin()
}
