package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/billing-service/internal/api/dto"
	"github.com/spec-kit/billing-service/internal/auth"
	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/service"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// InvoicesHandler manages invoice endpoints.
type InvoicesHandler struct {
	service *service.InvoiceService
}

// NewInvoicesHandler constructs handler.
func NewInvoicesHandler(invoiceService *service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{service: invoiceService}
}

// CreateInvoice POST /invoice.
func (h *InvoicesHandler) CreateInvoice(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	invoice, err := h.service.CreateInvoice(c.UserContext(), session, service.InvoiceCreateInput{
		Amount:     req.Amount,
		Status:     req.Status,
		DueDate:    req.Due(),
		CustomerID: req.Customer(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

// ListInvoices GET /invoice?customerId=.
func (h *InvoicesHandler) ListInvoices(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	customerID := c.Query("customerId")
	if customerID == "" {
		customerID = c.Query("customer_id")
	}

	invoices, err := h.service.ListInvoices(c.UserContext(), session, customerID)
	if err != nil {
		return err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, invoiceResponse(&invoices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateInvoice PATCH /invoice.
func (h *InvoicesHandler) UpdateInvoice(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.UpdateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	invoice, err := h.service.UpdateInvoice(c.UserContext(), session, service.InvoiceUpdateInput{
		ID:      req.ID,
		Amount:  req.Amount,
		Status:  req.Status,
		DueDate: req.Due(),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

func invoiceResponse(invoice *domain.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:         invoice.ID,
		Amount:     invoice.Amount.StringFixed(2),
		Status:     invoice.Status,
		DueDate:    invoice.DueDate.Format(domain.DateLayout),
		CustomerID: invoice.CustomerID,
		CreatedAt:  invoice.CreatedAt,
		UpdatedAt:  invoice.UpdatedAt,
	}
	if invoice.Customer != nil {
		customer := customerResponse(invoice.Customer)
		resp.Customer = &customer
	}
	return resp
}
