package payments

import (
	"time"

	paysvc "shareledger-backend/internal/application/payments"
	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *paysvc.Service
}

const dateLayout = "2006-01-02"

type updatePaymentRequest struct {
	Amount               *decimal.Decimal `json:"amount"`
	Status               *string          `json:"status"`
	PaymentDate          *string          `json:"payment_date"`
	AllocatedInstallment *int             `json:"allocated_installment"`
}

// GET /api/v1/payments?share_id=
func (h *Handlers) ListPayments(c *fiber.Ctx) error {
	var shareID *uuid.UUID
	if raw := c.Query("share_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid share_id", 400, nil)
		}
		shareID = &id
	}
	rows, err := h.Service.ListPayments(c.Context(), shareID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payments fetched successfully", rows, nil)
}

// GET /api/v1/payments/:id
func (h *Handlers) GetPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid payment id", 400, nil)
	}
	payment, err := h.Service.GetPayment(c.Context(), id)
	if err != nil {
		if err == paysvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment fetched successfully", payment, nil)
}

// PUT /api/v1/payments/:id — marks installments paid/overdue/cancelled.
func (h *Handlers) UpdatePayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid payment id", 400, nil)
	}
	var body updatePaymentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := paysvc.UpdatePaymentInput{
		Amount:               body.Amount,
		AllocatedInstallment: body.AllocatedInstallment,
	}
	if body.Status != nil {
		status := domain.PaymentStatus(*body.Status)
		if !status.Valid() {
			return response.ValidationError(c, map[string]string{"status": "Must be one of pending, paid, overdue, cancelled."})
		}
		in.Status = &status
	}
	if body.PaymentDate != nil {
		paid, err := time.Parse(dateLayout, *body.PaymentDate)
		if err != nil {
			return response.ValidationError(c, map[string]string{"payment_date": "Must be an ISO-8601 date (YYYY-MM-DD)."})
		}
		in.PaymentDate = &paid
	}

	payment, err := h.Service.UpdatePayment(c.Context(), id, in)
	if err != nil {
		if err == paysvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment updated successfully", payment, nil)
}

// DELETE /api/v1/payments/:id
func (h *Handlers) DeletePayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid payment id", 400, nil)
	}
	if err := h.Service.DeletePayment(c.Context(), id); err != nil {
		if err == paysvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment deleted successfully", nil, nil)
}
