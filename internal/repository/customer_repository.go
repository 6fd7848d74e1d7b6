package repository

import (
	"context"

	"github.com/spec-kit/billing-service/internal/domain"
)

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// ListByOwner returns the owner's customers ordered by name, byte-wise.
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (user_id, name)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		customer.OwnerUserID,
		customer.Name,
	).Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, user_id, name, created_at
        FROM customers WHERE id=$1`

	var customer domain.Customer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.OwnerUserID,
		&customer.Name,
		&customer.CreatedAt,
	); err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

func (r *customerRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Customer, error) {
	const query = `
        SELECT id, user_id, name, created_at
        FROM customers WHERE user_id=$1
        ORDER BY name COLLATE "C" ASC, id ASC`

	rows, err := r.db.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.OwnerUserID,
			&customer.Name,
			&customer.CreatedAt,
		); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
