package shares

import (
	"errors"
	"time"

	sharesvc "shareledger-backend/internal/application/shares"
	"shareledger-backend/internal/pkg/response"
	"shareledger-backend/internal/schedule"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *sharesvc.Service
}

const dateLayout = "2006-01-02"

type createShareRequest struct {
	ShareholderID           string           `json:"shareholder_id"`
	AnnualAmount            decimal.Decimal  `json:"annual_amount"`
	Duration                int              `json:"duration"`
	StartDate               string           `json:"start_date"`
	InstallmentType         string           `json:"installment_type"`
	CustomInstallmentPeriod *int             `json:"custom_installment_period"`
	CustomInstallmentAmount *decimal.Decimal `json:"custom_installment_amount"`
}

type updateShareRequest struct {
	AnnualAmount            *decimal.Decimal `json:"annual_amount"`
	Duration                *int             `json:"duration"`
	StartDate               *string          `json:"start_date"`
	InstallmentType         *string          `json:"installment_type"`
	CustomInstallmentPeriod *int             `json:"custom_installment_period"`
	CustomInstallmentAmount *decimal.Decimal `json:"custom_installment_amount"`
}

// POST /api/v1/shares — creates the share and its full payment ledger.
func (h *Handlers) CreateShare(c *fiber.Ctx) error {
	var body createShareRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	shareholderID, err := uuid.Parse(body.ShareholderID)
	if err != nil {
		return response.ValidationError(c, map[string]string{"shareholder": "Must be a valid UUID."})
	}

	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	if body.StartDate != "" {
		startDate, err = time.Parse(dateLayout, body.StartDate)
		if err != nil {
			return response.ValidationError(c, map[string]string{"start_date": "Must be an ISO-8601 date (YYYY-MM-DD)."})
		}
	}

	in := sharesvc.CreateShareInput{
		ShareholderID:           shareholderID,
		AnnualAmount:            body.AnnualAmount,
		DurationYears:           body.Duration,
		StartDate:               startDate,
		InstallmentType:         schedule.InstallmentType(body.InstallmentType),
		CustomInstallmentPeriod: body.CustomInstallmentPeriod,
		CustomInstallmentAmount: body.CustomInstallmentAmount,
	}
	if fields := in.Validate(); fields != nil {
		return response.ValidationError(c, fields)
	}

	view, err := h.Service.CreateShare(c.Context(), in)
	if err != nil {
		if err == sharesvc.ErrShareholderNotFound {
			return response.Error(c, err.Error(), 400, map[string]interface{}{"shareholder": "Unknown shareholder."})
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Share created successfully", view, nil)
}

// GET /api/v1/shares
func (h *Handlers) ListShares(c *fiber.Ctx) error {
	views, err := h.Service.ListShares(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shares fetched successfully", views, nil)
}

// GET /api/v1/shares/:id
func (h *Handlers) GetShare(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share id", 400, nil)
	}
	view, err := h.Service.GetShare(c.Context(), id)
	if err != nil {
		if err == sharesvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Share fetched successfully", view, nil)
}

// PUT /api/v1/shares/:id — reconciles the payment ledger against the
// regenerated schedule.
func (h *Handlers) UpdateShare(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share id", 400, nil)
	}
	var body updateShareRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := sharesvc.UpdateShareInput{
		AnnualAmount:            body.AnnualAmount,
		DurationYears:           body.Duration,
		CustomInstallmentPeriod: body.CustomInstallmentPeriod,
		CustomInstallmentAmount: body.CustomInstallmentAmount,
	}
	if body.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *body.StartDate)
		if err != nil {
			return response.ValidationError(c, map[string]string{"start_date": "Must be an ISO-8601 date (YYYY-MM-DD)."})
		}
		in.StartDate = &startDate
	}
	if body.InstallmentType != nil {
		it := schedule.InstallmentType(*body.InstallmentType)
		in.InstallmentType = &it
	}

	view, err := h.Service.UpdateShare(c.Context(), id, in)
	if err != nil {
		var vErr *sharesvc.ValidationError
		if errors.As(err, &vErr) {
			return response.ValidationError(c, vErr.Fields)
		}
		if err == sharesvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Share updated successfully", view, nil)
}

// DELETE /api/v1/shares/:id — cascades to payments.
func (h *Handlers) DeleteShare(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share id", 400, nil)
	}
	if err := h.Service.DeleteShare(c.Context(), id); err != nil {
		if err == sharesvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Share deleted successfully", nil, nil)
}
