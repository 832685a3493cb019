package service

import "yamdb/internal/microservices/http-api/models"

// Actor is the authenticated caller of a service operation, taken from the bearer token.
// The zero Actor is anonymous.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsStaff is true for moderators and admins.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

// CanModify reports whether a may edit or delete content written by authorID.
// Applies to both reviews and comments.
func CanModify(a Actor, authorID string) bool {
	if !a.Authenticated() {
		return false
	}
	return a.UserID == authorID || a.IsStaff()
}

func requireAuthenticated(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

func requireAdmin(a Actor) error {
	if err := requireAuthenticated(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
