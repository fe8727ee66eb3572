package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthResponse struct {
	Success   bool  `json:"success"`
	OK        bool  `json:"ok"`
	Timestamp int64 `json:"timestamp"`
}

// Health never contacts the upstream.
func (a *API) Health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Success: true, OK: true, Timestamp: time.Now().UnixMilli()})
}
