package model

import (
	"fmt"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the user is an active administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.DeletedAt == nil && u.Role == RoleAdmin
}

// Role is the closed set of account roles.
type Role string

// Roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a role string. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Scan implements sql.Scanner so that a role read from the database is
// validated at the boundary.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scanning role: unexpected type %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Errorf(ErrValidation, "password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
