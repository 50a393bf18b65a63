package domain

import "time"

type ID string

// User is an account. PasswordHash is a bcrypt hash and never leaves the
// auth service.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
