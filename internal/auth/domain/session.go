package domain

import "time"

// RevokedSession marks a signed session as terminated before its natural
// expiry. Rows are useless once ExpiresAt has passed.
type RevokedSession struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}
