package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/billing-service/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var invoiceRowColumns = []string{
	"id", "customer_id", "amount", "status", "due_date", "created_at", "updated_at",
	"c_id", "c_user_id", "c_name", "c_created_at",
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users \(name, email, password_hash\)`).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	user := &domain.User{Name: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(mock).Create(context.Background(), user))
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := NewUserRepository(mock).Create(context.Background(), &domain.User{Name: "alice", Email: "a@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("nobody@x.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewUserRepository(mock).GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u-1", "alice", "a@x.com", "hash", now, now))

	user, err := NewUserRepository(mock).GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestCustomerRepository_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO customers \(user_id, name\)`).
		WithArgs("u-1", "Acme").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("c-1", now))

	customer := &domain.Customer{Name: "Acme", OwnerUserID: "u-1"}
	require.NoError(t, NewCustomerRepository(mock).Create(context.Background(), customer))
	assert.Equal(t, "c-1", customer.ID)
}

func TestCustomerRepository_ListByOwner(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM customers WHERE user_id=\$1\s+ORDER BY name COLLATE "C" ASC`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "created_at"}).
			AddRow("c-1", "u-1", "Acme", now).
			AddRow("c-2", "u-1", "Globex", now))

	customers, err := NewCustomerRepository(mock).ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Acme", customers[0].Name)
	assert.Equal(t, "Globex", customers[1].Name)
}

func TestCustomerRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM customers WHERE id=\$1`).
		WithArgs("c-404").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewCustomerRepository(mock).GetByID(context.Background(), "c-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceRepository_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO invoices \(customer_id, amount, status, due_date\)`).
		WithArgs("c-1", "100.5", "pending", due).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i-1", now, now))

	invoice := &domain.Invoice{
		Amount:     decimal.RequireFromString("100.50"),
		Status:     domain.InvoiceStatusPending,
		DueDate:    due,
		CustomerID: "c-1",
	}
	require.NoError(t, NewInvoiceRepository(mock).Create(context.Background(), invoice))
	assert.Equal(t, "i-1", invoice.ID)
}

func TestInvoiceRepository_GetByIDJoinsCustomer(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`JOIN customers c ON c.id = i.customer_id\s+WHERE i.id=\$1`).
		WithArgs("i-1").
		WillReturnRows(pgxmock.NewRows(invoiceRowColumns).
			AddRow("i-1", "c-1", "100.50", "paid", due, now, now, "c-1", "u-1", "Acme", now))

	invoice, err := NewInvoiceRepository(mock).GetByID(context.Background(), "i-1")
	require.NoError(t, err)
	assert.True(t, invoice.Amount.Equal(decimal.RequireFromString("100.5")))
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	require.NotNil(t, invoice.Customer)
	assert.Equal(t, "u-1", invoice.Customer.OwnerUserID)
}

func TestInvoiceRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`WHERE i.id=\$1`).
		WithArgs("i-404").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewInvoiceRepository(mock).GetByID(context.Background(), "i-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceRepository_ListByCustomer(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	later := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE i.customer_id=\$1\s+ORDER BY i.due_date DESC`).
		WithArgs("c-1").
		WillReturnRows(pgxmock.NewRows(invoiceRowColumns).
			AddRow("i-2", "c-1", "5.00", "pending", later, now, now, "c-1", "u-1", "Acme", now).
			AddRow("i-1", "c-1", "0.00", "paid", earlier, now, now, "c-1", "u-1", "Acme", now))

	invoices, err := NewInvoiceRepository(mock).ListByCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "i-2", invoices[0].ID)
	assert.True(t, invoices[1].Amount.IsZero())
	assert.Equal(t, "Acme", invoices[1].Customer.Name)
}

func TestInvoiceRepository_Update(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE invoices SET amount=\$1::numeric, status=\$2, due_date=\$3`).
		WithArgs("100.5", "paid", due, "i-1").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	invoice := &domain.Invoice{
		ID:      "i-1",
		Amount:  decimal.RequireFromString("100.50"),
		Status:  domain.InvoiceStatusPaid,
		DueDate: due,
	}
	require.NoError(t, NewInvoiceRepository(mock).Update(context.Background(), invoice))
	assert.Equal(t, now, invoice.UpdatedAt)
}

func TestInvoiceRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`UPDATE invoices`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "i-404").
		WillReturnError(pgx.ErrNoRows)

	err := NewInvoiceRepository(mock).Update(context.Background(), &domain.Invoice{ID: "i-404"})
	assert.ErrorIs(t, err, ErrNotFound)
}
