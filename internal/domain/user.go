package domain

import "time"

// User is an account that owns customers. The password hash never leaves
// the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
