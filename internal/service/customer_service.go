package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/repository"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// CustomerService is the customer registry. Every customer is scoped to the
// user who created it.
type CustomerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer stores a customer owned by the session user.
func (s *CustomerService) CreateCustomer(ctx context.Context, session *domain.Session, name string) (*domain.Customer, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	customer := &domain.Customer{
		Name:        name,
		OwnerUserID: session.UserID,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// ListCustomers returns the session user's customers ordered by name.
func (s *CustomerService) ListCustomers(ctx context.Context, session *domain.Session) ([]domain.Customer, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	customers, err := s.customers.ListByOwner(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}
