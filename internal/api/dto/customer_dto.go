package dto

import "time"

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	Name string `json:"name"`
}

// CustomerSummary is the list item for GET /customer.
type CustomerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerResponse is a full customer record.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
