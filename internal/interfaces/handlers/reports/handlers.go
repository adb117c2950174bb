package reports

import (
	repsvc "shareledger-backend/internal/application/reports"
	"shareledger-backend/internal/pkg/response"
	"shareledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *repsvc.Service
}

// GET /api/v1/reports/summary?month=&year=
// Month must be a digit string in [1,12]; anything else is rejected before
// any query runs.
func (h *Handlers) SummaryAndDetails(c *fiber.Ctx) error {
	var month, year *int

	if raw := c.Query("month"); raw != "" {
		m, ok := validation.ParseMonth(raw)
		if !ok {
			return response.Error(c, "Wrong input", 400, map[string]interface{}{"month": "Must be a number between 1 and 12."})
		}
		month = &m
	}
	if raw := c.Query("year"); raw != "" {
		y, ok := validation.ParseYear(raw)
		if !ok {
			return response.Error(c, "Wrong input", 400, map[string]interface{}{"year": "Must be a four-digit year."})
		}
		year = &y
	}

	report, err := h.Service.SummaryAndDetails(c.Context(), month, year)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Report fetched successfully", report, nil)
}
