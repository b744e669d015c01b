package domain

import (
	"fmt"
	"slices"
	"time"
)

// RoleName is the symbolic name of a permission role.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = RoleUser

// AllRoles lists the closed set of roles the service knows about.
var AllRoles = []RoleName{RoleUser, RoleAdmin}

// Valid reports whether r belongs to the closed role enumeration.
func (r RoleName) Valid() bool {
	return slices.Contains(AllRoles, r)
}

// Role is seed data: created out-of-band, read-only for the service.
type Role struct {
	ID   string   `json:"id"`
	Name RoleName `json:"name"`
}

// User models a registered account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Roles        []RoleName `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser builds a user that is valid from the start: it always carries a
// password hash and at least one known role. Duplicate roles are collapsed.
func NewUser(username, passwordHash string, roles []RoleName, now time.Time) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidUser)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no roles", ErrInvalidUser)
	}

	set := make([]RoleName, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, r)
		}
		if !slices.Contains(set, r) {
			set = append(set, r)
		}
	}
	slices.Sort(set)

	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        set,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasRole reports whether the user holds role r.
func (u *User) HasRole(r RoleName) bool {
	return slices.Contains(u.Roles, r)
}
