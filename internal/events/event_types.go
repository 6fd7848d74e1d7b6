package events

import (
	"time"

	"github.com/spec-kit/billing-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventInvoiceCreated       EventType = "invoice_created"
	EventInvoiceStatusChanged EventType = "invoice_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	InvoiceID   string      `json:"invoice_id"`
	CustomerID  string      `json:"customer_id"`
	ActorUserID string      `json:"actor_user_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// InvoiceCreatedPayload payload.
type InvoiceCreatedPayload struct {
	Amount  string               `json:"amount"`
	Status  domain.InvoiceStatus `json:"status"`
	DueDate string               `json:"due_date"`
}

// InvoiceStatusChangedPayload payload.
type InvoiceStatusChangedPayload struct {
	OldStatus domain.InvoiceStatus `json:"old_status"`
	NewStatus domain.InvoiceStatus `json:"new_status"`
}
