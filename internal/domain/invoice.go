package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates payment states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid:
		return true
	default:
		return false
	}
}

// DateLayout is the wire and storage format of invoice due dates.
const DateLayout = "2006-01-02"

// Invoice is a bill issued to a customer. Its effective owner is the owner of
// CustomerID, which never changes after creation.
type Invoice struct {
	ID         string
	Amount     decimal.Decimal
	Status     InvoiceStatus
	DueDate    time.Time
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Customer is populated by reads that join the owning customer.
	Customer *Customer
}
