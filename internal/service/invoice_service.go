package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/events"
	"github.com/spec-kit/billing-service/internal/repository"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// Amounts are stored as numeric(12,2).
var maxAmount = decimal.New(1, 10)

// Amounts outside these bounds are rejected before any rounding or
// comparison, which rescale the coefficient to the exponent.
const (
	maxAmountExponent        = 12
	maxAmountCoefficientBits = 96
)

// InvoiceService is the invoice ledger. Invoices are owned through their
// customer.
type InvoiceService struct {
	invoices   repository.InvoiceRepository
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
}

// InvoiceDependencies bundles repositories for the invoice service.
type InvoiceDependencies struct {
	InvoiceRepo  repository.InvoiceRepository
	CustomerRepo repository.CustomerRepository
	Dispatcher   events.Dispatcher
}

// InvoiceCreateInput describes invoice creation payload. Amount is nil when
// the caller omitted it.
type InvoiceCreateInput struct {
	Amount     *decimal.Decimal
	Status     string
	DueDate    string
	CustomerID string
}

// InvoiceUpdateInput carries a partial update; nil fields keep their value.
type InvoiceUpdateInput struct {
	ID      string
	Amount  *decimal.Decimal
	Status  *string
	DueDate *string
}

// NewInvoiceService constructs the service.
func NewInvoiceService(deps InvoiceDependencies) *InvoiceService {
	return &InvoiceService{
		invoices:   deps.InvoiceRepo,
		customers:  deps.CustomerRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateInvoice records an invoice against a customer the session user owns.
func (s *InvoiceService) CreateInvoice(ctx context.Context, session *domain.Session, input InvoiceCreateInput) (*domain.Invoice, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if input.Amount == nil ||
		strings.TrimSpace(input.Status) == "" ||
		strings.TrimSpace(input.DueDate) == "" ||
		strings.TrimSpace(input.CustomerID) == "" {
		return nil, apperrors.NewValidationError("missing required fields", nil)
	}

	customer, err := s.ownedCustomer(ctx, session, input.CustomerID)
	if err != nil {
		return nil, err
	}

	amount, err := validateAmount(*input.Amount)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		Amount:     amount,
		Status:     status,
		DueDate:    dueDate,
		CustomerID: customer.ID,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	invoice.Customer = customer

	s.publishEvent(ctx, events.Event{
		Type:        events.EventInvoiceCreated,
		InvoiceID:   invoice.ID,
		CustomerID:  customer.ID,
		ActorUserID: session.UserID,
		Payload: events.InvoiceCreatedPayload{
			Amount:  invoice.Amount.StringFixed(2),
			Status:  invoice.Status,
			DueDate: invoice.DueDate.Format(domain.DateLayout),
		},
	})
	return invoice, nil
}

// ListInvoices returns a customer's invoices, latest due date first. The
// customer must belong to the session user.
func (s *InvoiceService) ListInvoices(ctx context.Context, session *domain.Session, customerID string) ([]domain.Invoice, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, apperrors.NewValidationError("customer id is required", nil)
	}

	customer, err := s.ownedCustomer(ctx, session, customerID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// UpdateInvoice applies the present fields of input to an invoice the session
// user owns.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, session *domain.Session, input InvoiceUpdateInput) (*domain.Invoice, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ID) == "" {
		return nil, apperrors.NewValidationError("invoice id is required", nil)
	}

	invoice, err := s.ownedInvoice(ctx, session, input.ID)
	if err != nil {
		return nil, err
	}
	previousStatus := invoice.Status

	if input.Amount != nil {
		amount, err := validateAmount(*input.Amount)
		if err != nil {
			return nil, err
		}
		invoice.Amount = amount
	}
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		status, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		invoice.Status = status
	}
	if input.DueDate != nil && strings.TrimSpace(*input.DueDate) != "" {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		invoice.DueDate = dueDate
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden(msgInvoiceForbidden)
		}
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	if invoice.Status != previousStatus {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventInvoiceStatusChanged,
			InvoiceID:   invoice.ID,
			CustomerID:  invoice.CustomerID,
			ActorUserID: session.UserID,
			Payload: events.InvoiceStatusChangedPayload{
				OldStatus: previousStatus,
				NewStatus: invoice.Status,
			},
		})
	}
	return invoice, nil
}

// ownedCustomer resolves a customer and applies the ownership guard. Missing
// and foreign customers produce the same Forbidden error.
func (s *InvoiceService) ownedCustomer(ctx context.Context, session *domain.Session, rawID string) (*domain.Customer, error) {
	id, ok := normalizeID(strings.TrimSpace(rawID))
	if !ok {
		return nil, apperrors.NewForbidden(msgCustomerForbidden)
	}
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden(msgCustomerForbidden)
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if err := ensureOwner(session, customer.OwnerUserID, msgCustomerForbidden); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *InvoiceService) ownedInvoice(ctx context.Context, session *domain.Session, rawID string) (*domain.Invoice, error) {
	id, ok := normalizeID(strings.TrimSpace(rawID))
	if !ok {
		return nil, apperrors.NewForbidden(msgInvoiceForbidden)
	}
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden(msgInvoiceForbidden)
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	if invoice.Customer == nil {
		return nil, apperrors.NewForbidden(msgInvoiceForbidden)
	}
	if err := ensureOwner(session, invoice.Customer.OwnerUserID, msgInvoiceForbidden); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if exp := amount.Exponent(); exp < -maxAmountExponent || exp > maxAmountExponent ||
		amount.Coefficient().BitLen() > maxAmountCoefficientBits {
		return decimal.Decimal{}, apperrors.NewValidationError("amount is out of range", nil)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, apperrors.NewValidationError("amount must not be negative", nil)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, apperrors.NewValidationError("amount supports at most two decimal places", nil)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, apperrors.NewValidationError("amount is too large", nil)
	}
	return amount, nil
}

func parseStatus(raw string) (domain.InvoiceStatus, error) {
	status := domain.InvoiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperrors.NewValidationError("status must be one of: pending, paid", map[string]any{"status": raw})
	}
	return status, nil
}

// parseDueDate accepts YYYY-MM-DD, or an RFC 3339 timestamp truncated to its
// UTC calendar date.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(domain.DateLayout, raw); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperrors.NewValidationError("due date must be a calendar date (YYYY-MM-DD)", map[string]any{"due_date": raw})
}
