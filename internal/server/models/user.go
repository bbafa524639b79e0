package models

import "time"

const guestName = "Guest User"

// User is a library account. Guests are represented by Guest() and are
// never stored.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Guest returns the placeholder identity for anonymous browsing.
func Guest() User {
	return User{Name: guestName, Role: RoleGuest}
}

func (u User) IsGuest() bool { return u.Role == RoleGuest }
