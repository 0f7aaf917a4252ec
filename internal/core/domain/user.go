package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "Admin"
	RoleSupport = "Support"
	RoleUser    = "User"
)

// BootstrapRoles is the fixed set of roles that must exist before any role
// assignment takes place.
var BootstrapRoles = []string{RoleAdmin, RoleSupport, RoleUser}

// User models an account that can sign in. UserName equals the email address.
type User struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	UserName       string    `json:"user_name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser builds an unsaved user with a fresh identifier.
func NewUser(fullName, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		FullName:  fullName,
		UserName:  email,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) EntityID() uuid.UUID { return u.ID }

// UpdateProfilePicture replaces the stored profile picture path.
func (u *User) UpdateProfilePicture(path string) {
	u.ProfilePicture = path
	u.UpdatedAt = time.Now().UTC()
}

// HasRole reports whether the user has been assigned the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// NormalizeEmail is the canonical form used for case-insensitive email lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Role is a named permission group.
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// IsBootstrapRole reports whether name belongs to BootstrapRoles.
func IsBootstrapRole(name string) bool {
	for _, r := range BootstrapRoles {
		if r == name {
			return true
		}
	}
	return false
}
