package handlers

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	db   *sql.DB
	mock bool
}

func NewHealthHandler(db *sql.DB, mock bool) *HealthHandler {
	return &HealthHandler{db: db, mock: mock}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := h.db.PingContext(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"mockMode":  h.mock,
		"timestamp": time.Now().UTC(),
	})
}
