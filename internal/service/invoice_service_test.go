package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/billing-service/internal/config"
	"github.com/spec-kit/billing-service/internal/domain"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

func amountOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

type InvoiceServiceSuite struct {
	suite.Suite
	ctx   context.Context
	f     *fixture
	alice *domain.Session
	bob   *domain.Session
	acme  *domain.Customer
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture(s.T(), nil)
	s.alice = s.f.signUp(s.T(), "alice", "a@x.com")
	s.bob = s.f.signUp(s.T(), "bob", "b@x.com")
	s.acme = s.f.customer(s.T(), s.alice, "Acme")
}

func (s *InvoiceServiceSuite) create(amount, status, due string) *domain.Invoice {
	invoice, err := s.f.invoices.CreateInvoice(s.ctx, s.alice, InvoiceCreateInput{
		Amount:     amountOf(amount),
		Status:     status,
		DueDate:    due,
		CustomerID: s.acme.ID,
	})
	s.Require().NoError(err)
	return invoice
}

func (s *InvoiceServiceSuite) assertCode(err error, code string) *apperrors.DomainError {
	de := apperrors.ToDomainError(err)
	s.Require().NotNil(de, "expected %s", code)
	s.Equal(code, de.Code, de.Message)
	return de
}

func (s *InvoiceServiceSuite) TestCreate() {
	invoice := s.create("100.50", "pending", "2025-01-01")

	s.NotEmpty(invoice.ID)
	s.True(invoice.Amount.Equal(decimal.RequireFromString("100.5")))
	s.Equal(domain.InvoiceStatusPending, invoice.Status)
	s.Equal("2025-01-01", invoice.DueDate.Format(domain.DateLayout))
	s.Equal(s.acme.ID, invoice.CustomerID)
	s.Require().NotNil(invoice.Customer)
	s.Equal("Acme", invoice.Customer.Name)
}

func (s *InvoiceServiceSuite) TestCreate_ZeroAmountAllowed() {
	invoice := s.create("0", "paid", "2025-01-01")
	s.True(invoice.Amount.IsZero())
}

func (s *InvoiceServiceSuite) TestCreate_RFC3339DueDate() {
	invoice := s.create("1", "pending", "2025-06-30T23:30:00-02:00")
	s.Equal("2025-07-01", invoice.DueDate.Format(domain.DateLayout))
}

func (s *InvoiceServiceSuite) TestCreate_InvalidValues() {
	cases := map[string]InvoiceCreateInput{
		"negative amount": {Amount: amountOf("-0.01"), Status: "pending", DueDate: "2025-01-01"},
		"unknown status":  {Amount: amountOf("1"), Status: "cancelled", DueDate: "2025-01-01"},
		"three decimals":  {Amount: amountOf("1.005"), Status: "pending", DueDate: "2025-01-01"},
		"too large":       {Amount: amountOf("10000000000"), Status: "pending", DueDate: "2025-01-01"},
		"impossible date": {Amount: amountOf("1"), Status: "pending", DueDate: "2025-02-30"},
		"not a date":      {Amount: amountOf("1"), Status: "pending", DueDate: "tomorrow"},
	}
	for name, input := range cases {
		s.Run(name, func() {
			input.CustomerID = s.acme.ID
			_, err := s.f.invoices.CreateInvoice(s.ctx, s.alice, input)
			s.assertCode(err, "VALIDATION_FAILED")
		})
	}
}

func (s *InvoiceServiceSuite) TestCreate_MissingFields() {
	full := InvoiceCreateInput{Amount: amountOf("1"), Status: "pending", DueDate: "2025-01-01", CustomerID: s.acme.ID}
	cases := map[string]func(in *InvoiceCreateInput){
		"amount":     func(in *InvoiceCreateInput) { in.Amount = nil },
		"status":     func(in *InvoiceCreateInput) { in.Status = "" },
		"dueDate":    func(in *InvoiceCreateInput) { in.DueDate = " " },
		"customerId": func(in *InvoiceCreateInput) { in.CustomerID = "" },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			input := full
			mutate(&input)
			_, err := s.f.invoices.CreateInvoice(s.ctx, s.alice, input)
			de := s.assertCode(err, "VALIDATION_FAILED")
			s.Equal("missing required fields", de.Message)
		})
	}
}

func (s *InvoiceServiceSuite) TestCreate_ForeignAndMissingCustomerLookAlike() {
	input := InvoiceCreateInput{Amount: amountOf("1"), Status: "pending", DueDate: "2025-01-01"}

	input.CustomerID = s.acme.ID
	_, foreign := s.f.invoices.CreateInvoice(s.ctx, s.bob, input)

	input.CustomerID = uuid.NewString()
	_, missing := s.f.invoices.CreateInvoice(s.ctx, s.bob, input)

	input.CustomerID = "42"
	_, malformed := s.f.invoices.CreateInvoice(s.ctx, s.bob, input)

	want := s.assertCode(foreign, "FORBIDDEN")
	s.Equal("unauthorized or customer not found", want.Message)
	for _, err := range []error{missing, malformed} {
		got := s.assertCode(err, "FORBIDDEN")
		s.Equal(want.Message, got.Message)
		s.Equal(want.HTTPStatus, got.HTTPStatus)
	}
}

func (s *InvoiceServiceSuite) TestCreate_RequiresSession() {
	_, err := s.f.invoices.CreateInvoice(s.ctx, nil, InvoiceCreateInput{})
	s.assertCode(err, "UNAUTHORIZED")
}

func (s *InvoiceServiceSuite) TestUpdate_ForeignUserLeavesInvoiceUnchanged() {
	invoice := s.create("100.50", "pending", "2025-01-01")

	_, err := s.f.invoices.UpdateInvoice(s.ctx, s.bob, InvoiceUpdateInput{
		ID:      invoice.ID,
		Amount:  amountOf("1"),
		Status:  strPtr("paid"),
		DueDate: strPtr("2030-01-01"),
	})
	de := s.assertCode(err, "FORBIDDEN")
	s.Equal("unauthorized or invoice not found", de.Message)

	stored, err := s.f.store.Invoices().GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.True(stored.Amount.Equal(invoice.Amount))
	s.Equal(domain.InvoiceStatusPending, stored.Status)
	s.Equal("2025-01-01", stored.DueDate.Format(domain.DateLayout))
}

func (s *InvoiceServiceSuite) TestUpdate_MissingInvoiceLooksForbidden() {
	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{ID: id, Status: strPtr("paid")})
		de := s.assertCode(err, "FORBIDDEN")
		s.Equal("unauthorized or invoice not found", de.Message)
	}
}

func (s *InvoiceServiceSuite) TestUpdate_IDRequired() {
	_, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{Status: strPtr("paid")})
	s.assertCode(err, "VALIDATION_FAILED")
}

func (s *InvoiceServiceSuite) TestUpdate_PartialIsIdempotent() {
	invoice := s.create("100.50", "pending", "2025-01-01")
	input := InvoiceUpdateInput{ID: invoice.ID, Status: strPtr("paid")}

	first, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, input)
	s.Require().NoError(err)
	second, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, input)
	s.Require().NoError(err)

	for _, got := range []*domain.Invoice{first, second} {
		s.Equal(domain.InvoiceStatusPaid, got.Status)
		s.True(got.Amount.Equal(decimal.RequireFromString("100.50")))
		s.Equal("2025-01-01", got.DueDate.Format(domain.DateLayout))
		s.Equal(s.acme.ID, got.CustomerID)
	}
}

func (s *InvoiceServiceSuite) TestUpdate_AppliesPresentFields() {
	invoice := s.create("100.50", "pending", "2025-01-01")

	updated, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{
		ID:      invoice.ID,
		Amount:  amountOf("250"),
		DueDate: strPtr("2025-02-15"),
		Status:  strPtr(""),
	})
	s.Require().NoError(err)
	s.True(updated.Amount.Equal(decimal.RequireFromString("250")))
	s.Equal("2025-02-15", updated.DueDate.Format(domain.DateLayout))
	s.Equal(domain.InvoiceStatusPending, updated.Status)
}

func (s *InvoiceServiceSuite) TestAmountExponentsRejectedPromptly() {
	invoice := s.create("100.50", "pending", "2025-01-01")

	for _, raw := range []string{"1e-20000000", "1e20000000", "123456789012345678901234567890123"} {
		s.Run(raw, func() {
			start := time.Now()
			_, err := s.f.invoices.CreateInvoice(s.ctx, s.alice, InvoiceCreateInput{
				Amount: amountOf(raw), Status: "pending", DueDate: "2025-01-01", CustomerID: s.acme.ID,
			})
			s.assertCode(err, "VALIDATION_FAILED")

			_, err = s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{ID: invoice.ID, Amount: amountOf(raw)})
			s.assertCode(err, "VALIDATION_FAILED")
			s.Less(time.Since(start), time.Second)
		})
	}

	ok, err := validateAmount(decimal.RequireFromString("100.500000"))
	s.Require().NoError(err)
	s.Equal("100.50", ok.StringFixed(2))
}

func (s *InvoiceServiceSuite) TestUpdate_InvalidValues() {
	invoice := s.create("100.50", "pending", "2025-01-01")

	_, err := s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{ID: invoice.ID, Amount: amountOf("-5")})
	s.assertCode(err, "VALIDATION_FAILED")
	_, err = s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{ID: invoice.ID, Status: strPtr("cancelled")})
	s.assertCode(err, "VALIDATION_FAILED")
	_, err = s.f.invoices.UpdateInvoice(s.ctx, s.alice, InvoiceUpdateInput{ID: invoice.ID, DueDate: strPtr("01/02/2025")})
	s.assertCode(err, "VALIDATION_FAILED")

	stored, err := s.f.store.Invoices().GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceStatusPending, stored.Status)
}

func (s *InvoiceServiceSuite) TestList_OrderedByDueDateDesc() {
	s.create("1", "pending", "2025-01-01")
	s.create("2", "pending", "2025-03-01")
	s.create("3", "paid", "2024-11-15")

	invoices, err := s.f.invoices.ListInvoices(s.ctx, s.alice, s.acme.ID)
	s.Require().NoError(err)
	s.Require().Len(invoices, 3)
	s.Equal("2025-03-01", invoices[0].DueDate.Format(domain.DateLayout))
	s.Equal("2025-01-01", invoices[1].DueDate.Format(domain.DateLayout))
	s.Equal("2024-11-15", invoices[2].DueDate.Format(domain.DateLayout))
	for _, inv := range invoices {
		s.Require().NotNil(inv.Customer)
		s.Equal("Acme", inv.Customer.Name)
	}
}

func (s *InvoiceServiceSuite) TestList_RequiresOwnership() {
	s.create("1", "pending", "2025-01-01")

	_, err := s.f.invoices.ListInvoices(s.ctx, s.bob, s.acme.ID)
	s.assertCode(err, "FORBIDDEN")

	_, err = s.f.invoices.ListInvoices(s.ctx, s.alice, "")
	s.assertCode(err, "VALIDATION_FAILED")
}

func (s *InvoiceServiceSuite) TestList_EmptyForNewCustomer() {
	other := s.f.customer(s.T(), s.alice, "Globex")

	invoices, err := s.f.invoices.ListInvoices(s.ctx, s.alice, other.ID)
	s.Require().NoError(err)
	s.NotNil(invoices)
	s.Empty(invoices)
}

func TestInvoiceServiceSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func TestInvoiceEventsReachNotifications(t *testing.T) {
	f := newFixture(t, nil)
	core, logs := observer.New(zap.InfoLevel)
	NewNotificationService(f.dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	ctx := context.Background()
	alice := f.signUp(t, "alice", "a@x.com")
	acme := f.customer(t, alice, "Acme")

	invoice, err := f.invoices.CreateInvoice(ctx, alice, InvoiceCreateInput{
		Amount: amountOf("10"), Status: "pending", DueDate: "2025-01-01", CustomerID: acme.ID,
	})
	require.NoError(t, err)

	_, err = f.invoices.UpdateInvoice(ctx, alice, InvoiceUpdateInput{ID: invoice.ID, Status: strPtr("paid")})
	require.NoError(t, err)
	_, err = f.invoices.UpdateInvoice(ctx, alice, InvoiceUpdateInput{ID: invoice.ID, Status: strPtr("paid")})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("InvoiceCreated").Len())
	changed := logs.FilterMessage("InvoiceStatusChanged").All()
	require.Len(t, changed, 1, "unchanged status publishes nothing")
	assert.Equal(t, invoice.ID, changed[0].ContextMap()["invoice_id"])
}
