package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/billing-service/internal/auth"
	"github.com/spec-kit/billing-service/internal/config"
	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/events"
	"github.com/spec-kit/billing-service/internal/repository/memory"
)

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	auth       *AuthService
	customers  *CustomerService
	invoices   *InvoiceService
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}}
}

func newFixture(t *testing.T, limiter auth.LoginLimiter) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()

	authService, err := NewAuthService(testConfig(), AuthDependencies{
		UserRepo: store.Users(),
		Limiter:  limiter,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		auth:       authService,
		customers:  NewCustomerService(store.Customers()),
		invoices: NewInvoiceService(InvoiceDependencies{
			InvoiceRepo:  store.Invoices(),
			CustomerRepo: store.Customers(),
			Dispatcher:   dispatcher,
		}),
	}
}

// signUp registers an account and returns the session a login would carry.
func (f *fixture) signUp(t *testing.T, name, email string) *domain.Session {
	t.Helper()
	user, err := f.auth.RegisterUser(context.Background(), name, email, "pw123")
	require.NoError(t, err)
	return &domain.Session{UserID: user.ID, Email: user.Email}
}

func (f *fixture) customer(t *testing.T, session *domain.Session, name string) *domain.Customer {
	t.Helper()
	customer, err := f.customers.CreateCustomer(context.Background(), session, name)
	require.NoError(t, err)
	return customer
}
