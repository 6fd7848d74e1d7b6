package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/billing-service/internal/domain"
)

// InvoiceRepository encapsulates invoice persistence. Reads join the owning
// customer so callers can check ownership without a second query.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	// ListByCustomer returns invoices ordered by due date, latest first.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
}

type invoiceRepository struct {
	db DBTX
}

// NewInvoiceRepository instantiates repository.
func NewInvoiceRepository(db DBTX) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `
        i.id, i.customer_id, i.amount::text, i.status, i.due_date, i.created_at, i.updated_at,
        c.id, c.user_id, c.name, c.created_at
        FROM invoices i
        JOIN customers c ON c.id = i.customer_id`

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
        INSERT INTO invoices (customer_id, amount, status, due_date)
        VALUES ($1, $2::numeric, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		invoice.CustomerID,
		invoice.Amount.String(),
		string(invoice.Status),
		invoice.DueDate,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
        UPDATE invoices SET amount=$1::numeric, status=$2, due_date=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		invoice.Amount.String(),
		string(invoice.Status),
		invoice.DueDate,
		invoice.ID,
	).Scan(&invoice.UpdatedAt)
	return translateError(err)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
        WHERE i.id=$1`
	invoice, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return invoice, nil
}

func (r *invoiceRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
        WHERE i.customer_id=$1
        ORDER BY i.due_date DESC, i.created_at DESC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		invoice  domain.Invoice
		customer domain.Customer
		amount   string
		status   string
	)
	if err := row.Scan(
		&invoice.ID,
		&invoice.CustomerID,
		&amount,
		&status,
		&invoice.DueDate,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
		&customer.ID,
		&customer.OwnerUserID,
		&customer.Name,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: parse amount %q: %w", invoice.ID, amount, err)
	}
	invoice.Amount = parsed
	invoice.Status = domain.InvoiceStatus(status)
	invoice.Customer = &customer
	return &invoice, nil
}
