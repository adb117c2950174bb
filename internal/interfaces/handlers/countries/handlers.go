package countries

import (
	ctysvc "shareledger-backend/internal/application/countries"
	"shareledger-backend/internal/pkg/response"
	"shareledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *ctysvc.Service
}

type createCountryRequest struct {
	Name           string `json:"name"`
	ISOCode        string `json:"iso_code"`
	CurrencyCode   string `json:"currency_code"`
	CurrencySymbol string `json:"currency_symbol"`
}

// POST /api/v1/countries
func (h *Handlers) CreateCountry(c *fiber.Ctx) error {
	var body createCountryRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	fields := map[string]string{}
	if body.Name == "" {
		fields["name"] = "Required."
	}
	if !validation.IsValidISOCode(body.ISOCode) {
		fields["iso_code"] = "Must be a two-letter ISO code."
	}
	if !validation.IsValidCurrencyCode(body.CurrencyCode) {
		fields["currency_code"] = "Must be a three-letter currency code."
	}
	if len(fields) > 0 {
		return response.ValidationError(c, fields)
	}

	country, err := h.Service.CreateCountry(c.Context(), ctysvc.CreateCountryInput{
		Name:           body.Name,
		ISOCode:        body.ISOCode,
		CurrencyCode:   body.CurrencyCode,
		CurrencySymbol: body.CurrencySymbol,
	})
	if err != nil {
		switch err {
		case ctysvc.ErrISOCodeTaken:
			return response.Error(c, err.Error(), 409, map[string]interface{}{"iso_code": "Already exists."})
		case ctysvc.ErrCurrencyCodeTaken:
			return response.Error(c, err.Error(), 409, map[string]interface{}{"currency_code": "Already exists."})
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Country created successfully", country, nil)
}

// GET /api/v1/countries
func (h *Handlers) ListCountries(c *fiber.Ctx) error {
	countries, err := h.Service.ListCountries(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Countries fetched successfully", countries, nil)
}

// GET /api/v1/countries/:id
func (h *Handlers) GetCountry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid country id", 400, nil)
	}
	country, err := h.Service.GetCountry(c.Context(), id)
	if err != nil {
		if err == ctysvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Country fetched successfully", country, nil)
}

// DELETE /api/v1/countries/:id — detaches shareholders, never cascades.
func (h *Handlers) DeleteCountry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid country id", 400, nil)
	}
	if err := h.Service.DeleteCountry(c.Context(), id); err != nil {
		if err == ctysvc.ErrNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Country deleted successfully", nil, nil)
}
