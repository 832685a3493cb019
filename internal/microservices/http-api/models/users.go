package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ReservedUsername is the routing sentinel for self-lookup (/users/me).
const ReservedUsername = "me"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	// ConfirmationHash reuses the password slot: bcrypt of the last emailed code, empty once consumed.
	ConfirmationHash string    `gorm:"column:password_hash;not null;default:''" json:"-"`
	Role             string    `gorm:"size:10;default:'user';not null" json:"role"`
	Bio              string    `gorm:"type:text;not null;default:''" json:"bio"`
	FirstName        string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName         string    `gorm:"size:150;not null;default:''" json:"last_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ValidUsername checks length and the allowed character set. It does not reject the reserved name.
func ValidUsername(username string) bool {
	return len(username) > 0 && len(username) <= 150 && usernamePattern.MatchString(username)
}
