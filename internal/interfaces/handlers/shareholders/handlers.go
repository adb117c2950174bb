package shareholders

import (
	shsvc "shareledger-backend/internal/application/shareholders"
	"shareledger-backend/internal/pkg/response"
	"shareledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *shsvc.Service
}

type createShareholderRequest struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	CountryID   *string `json:"country_id"`
}

type updateShareholderRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	CountryID   *string `json:"country_id"`
}

func parseCountryID(raw *string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// POST /api/v1/shareholders
func (h *Handlers) CreateShareholder(c *fiber.Ctx) error {
	var body createShareholderRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	fields := map[string]string{}
	if !validation.IsValidEmail(body.Email) {
		fields["email"] = "Must be a valid email address."
	}
	if body.Name == "" {
		fields["name"] = "Required."
	}
	if len(fields) > 0 {
		return response.ValidationError(c, fields)
	}
	countryID, ok := parseCountryID(body.CountryID)
	if !ok {
		return response.ValidationError(c, map[string]string{"country_id": "Must be a valid UUID."})
	}

	holder, err := h.Service.CreateShareholder(c.Context(), shsvc.CreateShareholderInput{
		Email:       body.Email,
		Name:        body.Name,
		PhoneNumber: body.PhoneNumber,
		CountryID:   countryID,
	})
	if err != nil {
		switch err {
		case shsvc.ErrEmailTaken:
			return response.Error(c, err.Error(), 409, map[string]interface{}{"email": "Already exists."})
		case shsvc.ErrCountryNotFound:
			return response.Error(c, err.Error(), 400, map[string]interface{}{"country_id": "Unknown country."})
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Shareholder created successfully", holder, nil)
}

// GET /api/v1/shareholders
func (h *Handlers) ListShareholders(c *fiber.Ctx) error {
	holders, err := h.Service.ListShareholders(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shareholders fetched successfully", holders, nil)
}

// GET /api/v1/shareholders/:id
func (h *Handlers) GetShareholder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder id", 400, nil)
	}
	holder, err := h.Service.GetShareholder(c.Context(), id)
	if err != nil {
		if err == shsvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shareholder fetched successfully", holder, nil)
}

// PUT /api/v1/shareholders/:id
func (h *Handlers) UpdateShareholder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder id", 400, nil)
	}
	var body updateShareholderRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	countryID, ok := parseCountryID(body.CountryID)
	if !ok {
		return response.ValidationError(c, map[string]string{"country_id": "Must be a valid UUID."})
	}

	holder, err := h.Service.UpdateShareholder(c.Context(), id, shsvc.UpdateShareholderInput{
		Name:        body.Name,
		PhoneNumber: body.PhoneNumber,
		CountryID:   countryID,
	})
	if err != nil {
		switch err {
		case shsvc.ErrNotFound:
			return response.Error(c, err.Error(), 404, nil)
		case shsvc.ErrCountryNotFound:
			return response.Error(c, err.Error(), 400, map[string]interface{}{"country_id": "Unknown country."})
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shareholder updated successfully", holder, nil)
}

// DELETE /api/v1/shareholders/:id — cascades to shares and payments.
func (h *Handlers) DeleteShareholder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder id", 400, nil)
	}
	if err := h.Service.DeleteShareholder(c.Context(), id); err != nil {
		if err == shsvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shareholder deleted successfully", nil, nil)
}
