package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of identity kinds. The zero value is RoleGuest, so
// an uninitialised identity can never borrow.
type Role int

const (
	RoleGuest Role = iota
	RoleStudent
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return RoleGuest, nil
	case "student":
		return RoleStudent, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleGuest, fmt.Errorf("unknown role %q", s)
	}
}

// Persisted reports whether identities of this role have a stored record.
func (r Role) Persisted() bool { return r != RoleGuest }

// CanBorrow reports whether the role may own loans.
func (r Role) CanBorrow() bool { return r.Persisted() }

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores guests as an error: they must never reach the database.
func (r Role) Value() (driver.Value, error) {
	if !r.Persisted() {
		return nil, fmt.Errorf("role %s is not persisted", r)
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}
