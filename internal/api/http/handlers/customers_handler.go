package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/billing-service/internal/api/dto"
	"github.com/spec-kit/billing-service/internal/auth"
	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/service"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// CustomersHandler manages customer endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// CreateCustomer POST /customer.
func (h *CustomersHandler) CreateCustomer(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.service.CreateCustomer(c.UserContext(), session, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// ListCustomers GET /customer.
func (h *CustomersHandler) ListCustomers(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}

	customers, err := h.service.ListCustomers(c.UserContext(), session)
	if err != nil {
		return err
	}
	items := make([]dto.CustomerSummary, 0, len(customers))
	for _, customer := range customers {
		items = append(items, dto.CustomerSummary{ID: customer.ID, Name: customer.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		UserID:    customer.OwnerUserID,
		CreatedAt: customer.CreatedAt,
	}
}
