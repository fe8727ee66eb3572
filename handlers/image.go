package handlers

import (
	"net/url"
	"strings"

	"github.com/andesco/animeladder/pkg/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const imageCacheControl = "public, max-age=86400"

var errURLRequired = errors.New("URL required")

// ImageProxy returns the bytes of a caller-supplied image URL with the
// upstream Content-Type mirrored.
func (a *API) ImageProxy(c *fiber.Ctx) error {
	target, err := extractImageURL(c)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := a.fetch.Fetch(c.UserContext(), upstream.Request{URL: target, Binary: true})
	if err != nil {
		return a.sendUpstreamError(c, "image proxy", err)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType("image/jpeg"))
	c.Set(fiber.HeaderCacheControl, imageCacheControl)
	return c.Send(resp.Body)
}

// extractImageURL reads the url query parameter. Clients that encode the
// value twice are tolerated by unescaping once more when the result still
// looks escaped.
func extractImageURL(c *fiber.Ctx) (string, error) {
	raw := strings.TrimSpace(c.Query("url"))
	if raw == "" {
		return "", errURLRequired
	}
	if strings.HasPrefix(raw, "http%3A") || strings.HasPrefix(raw, "https%3A") {
		if unescaped, err := url.QueryUnescape(raw); err == nil {
			raw = unescaped
		}
	}
	return raw, nil
}
