package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// DefaultSessionCookie names the stub session cookie cleared on logout.
const DefaultSessionCookie = "app_session_id"

// Me always reports an anonymous caller; there are no accounts.
func (a *API) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": nil})
}

func (a *API) Logout(c *fiber.Ctx) error {
	c.ClearCookie(a.sessionCookie)
	return c.JSON(fiber.Map{"success": true})
}
