// Package memory provides in-process implementations of the repository
// interfaces. It backs development runs without POSTGRES_DSN and the tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/repository"
)

// Store holds all records behind one lock.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	emails    map[string]string
	customers map[string]domain.Customer
	invoices  map[string]domain.Invoice
	seq       map[string]int64
	next      int64
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		emails:    make(map[string]string),
		customers: make(map[string]domain.Customer),
		invoices:  make(map[string]domain.Invoice),
		seq:       make(map[string]int64),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

// Customers returns the customer repository view of the store.
func (s *Store) Customers() repository.CustomerRepository { return &customerRepository{s} }

// Invoices returns the invoice repository view of the store.
func (s *Store) Invoices() repository.InvoiceRepository { return &invoiceRepository{s} }

func (s *Store) stamp(id string) {
	s.next++
	s.seq[id] = s.next
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.emails[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type customerRepository struct{ s *Store }

func (r *customerRepository) Create(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	customer.ID = uuid.NewString()
	customer.CreatedAt = r.s.now()
	r.s.customers[customer.ID] = *customer
	r.s.stamp(customer.ID)
	return nil
}

func (r *customerRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customer, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &customer, nil
}

func (r *customerRepository) ListByOwner(_ context.Context, ownerUserID string) ([]domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customers := make([]domain.Customer, 0)
	for _, customer := range r.s.customers {
		if customer.OwnerUserID == ownerUserID {
			customers = append(customers, customer)
		}
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].Name != customers[j].Name {
			return customers[i].Name < customers[j].Name
		}
		return customers[i].ID < customers[j].ID
	})
	return customers, nil
}

type invoiceRepository struct{ s *Store }

func (r *invoiceRepository) Create(_ context.Context, invoice *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[invoice.CustomerID]; !ok {
		return repository.ErrNotFound
	}
	now := r.s.now()
	invoice.ID = uuid.NewString()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	stored := *invoice
	stored.Customer = nil
	r.s.invoices[invoice.ID] = stored
	r.s.stamp(invoice.ID)
	return nil
}

func (r *invoiceRepository) Update(_ context.Context, invoice *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.invoices[invoice.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Amount = invoice.Amount
	stored.Status = invoice.Status
	stored.DueDate = invoice.DueDate
	stored.UpdatedAt = r.s.now()
	r.s.invoices[invoice.ID] = stored
	invoice.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *invoiceRepository) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	invoice, ok := r.s.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withCustomer(invoice), nil
}

func (r *invoiceRepository) ListByCustomer(_ context.Context, customerID string) ([]domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0)
	for _, invoice := range r.s.invoices {
		if invoice.CustomerID == customerID {
			invoices = append(invoices, *r.withCustomer(invoice))
		}
	}
	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].DueDate.Equal(invoices[j].DueDate) {
			return invoices[i].DueDate.After(invoices[j].DueDate)
		}
		return r.s.seq[invoices[i].ID] > r.s.seq[invoices[j].ID]
	})
	return invoices, nil
}

func (r *invoiceRepository) withCustomer(invoice domain.Invoice) *domain.Invoice {
	if customer, ok := r.s.customers[invoice.CustomerID]; ok {
		invoice.Customer = &customer
	}
	return &invoice
}
