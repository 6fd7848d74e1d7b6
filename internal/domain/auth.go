package domain

import "time"

// Session is the identity carried by a validated access token.
type Session struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
