package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/billing-service/internal/domain"
)

// CreateInvoiceRequest payload. Amount accepts a JSON number or a numeric
// string; due date and customer id accept snake_case or camelCase keys.
type CreateInvoiceRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Status          string           `json:"status"`
	DueDate         string           `json:"due_date"`
	DueDateCamel    string           `json:"dueDate"`
	CustomerID      string           `json:"customer_id"`
	CustomerIDCamel string           `json:"customerId"`
}

// Due returns whichever due date key was sent.
func (r CreateInvoiceRequest) Due() string {
	if r.DueDate != "" {
		return r.DueDate
	}
	return r.DueDateCamel
}

// Customer returns whichever customer id key was sent.
func (r CreateInvoiceRequest) Customer() string {
	if r.CustomerID != "" {
		return r.CustomerID
	}
	return r.CustomerIDCamel
}

// UpdateInvoiceRequest payload; absent fields are left unchanged.
type UpdateInvoiceRequest struct {
	ID           string           `json:"id"`
	Amount       *decimal.Decimal `json:"amount"`
	Status       *string          `json:"status"`
	DueDate      *string          `json:"due_date"`
	DueDateCamel *string          `json:"dueDate"`
}

// Due returns whichever due date key was sent, or nil.
func (r UpdateInvoiceRequest) Due() *string {
	if r.DueDate != nil {
		return r.DueDate
	}
	return r.DueDateCamel
}

// InvoiceResponse renders an invoice. Amount is a fixed two-decimal string.
type InvoiceResponse struct {
	ID         string               `json:"id"`
	Amount     string               `json:"amount"`
	Status     domain.InvoiceStatus `json:"status"`
	DueDate    string               `json:"due_date"`
	CustomerID string               `json:"customer_id"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Customer   *CustomerResponse    `json:"customer,omitempty"`
}
