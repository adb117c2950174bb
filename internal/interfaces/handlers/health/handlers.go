package health

import (
	"shareledger-backend/internal/health"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb *redis.Client
	DB  health.DBPinger
}

// GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(health.Collect(c.Context(), h.Rdb, h.DB))
}
