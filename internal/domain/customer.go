package domain

import "time"

// Customer belongs to exactly one user; OwnerUserID is fixed at creation.
type Customer struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
}
