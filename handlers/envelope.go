package handlers

import (
	"github.com/andesco/animeladder/pkg/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type htmlResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Success: false, Error: msg})
}

// sendUpstreamError logs err and converts it to the error envelope. Caller
// mistakes in a proxied URL map to 4xx; every other failure is a 500.
func (a *API) sendUpstreamError(c *fiber.Ctx, op string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, upstream.ErrInvalidURL):
		status = fiber.StatusBadRequest
	case errors.Is(err, upstream.ErrDomainNotAllowed):
		status = fiber.StatusForbidden
	}
	a.log.Error(op+" failed", "path", c.Path(), "err", err)
	return sendError(c, status, err.Error())
}
