package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andesco/animeladder/pkg/hianime"
	"github.com/andesco/animeladder/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

const errNoServers = "No servers found"

func xhrHeader() http.Header {
	h := http.Header{}
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}

// Search forwards the upstream search page, or the recently-updated listing
// when no keyword is given.
func (a *API) Search(c *fiber.Ctx) error {
	page, ok := pageParam(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, "page must be a positive integer")
	}
	return a.forwardHTML(c, "search", a.site.SearchURL(c.Query("keyword"), page))
}

func (a *API) Latest(c *fiber.Ctx) error {
	page, ok := pageParam(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, "page must be a positive integer")
	}
	return a.forwardHTML(c, "latest", a.site.RecentlyUpdatedURL(page))
}

func (a *API) Trending(c *fiber.Ctx) error {
	return a.forwardHTML(c, "trending", a.site.HomeURL())
}

func (a *API) forwardHTML(c *fiber.Ctx, op, target string) error {
	resp, err := a.fetch.Fetch(c.UserContext(), upstream.Request{URL: target})
	if err != nil {
		return a.sendUpstreamError(c, op, err)
	}
	return c.JSON(htmlResponse{Success: true, HTML: resp.Text()})
}

// Episodes returns the html field of the upstream episode-list envelope.
func (a *API) Episodes(c *fiber.Ctx) error {
	animeID := c.Query("animeId")
	if animeID == "" {
		return sendError(c, fiber.StatusBadRequest, "animeId required")
	}
	html, err := a.episodeHTML(c.UserContext(), animeID)
	if err != nil {
		return a.sendUpstreamError(c, "episodes", err)
	}
	return c.JSON(htmlResponse{Success: true, HTML: html})
}

func (a *API) episodeHTML(ctx context.Context, animeID string) (string, error) {
	resp, err := a.fetch.Fetch(ctx, upstream.Request{
		URL:    a.site.EpisodeListURL(animeID),
		Header: xhrHeader(),
	})
	if err != nil {
		return "", err
	}
	return hianime.AjaxHTML(resp.Body)
}

// EpisodeSources resolves the first server of an episode and passes the
// upstream sources JSON through unchanged.
func (a *API) EpisodeSources(c *fiber.Ctx) error {
	episodeID := c.Query("episodeId")
	if episodeID == "" {
		return sendError(c, fiber.StatusBadRequest, "episodeId required")
	}

	servers, err := a.fetch.Fetch(c.UserContext(), upstream.Request{
		URL:    a.site.ServersURL(episodeID),
		Header: xhrHeader(),
	})
	if err != nil {
		return a.sendUpstreamError(c, "episode servers", err)
	}
	html, err := hianime.AjaxHTML(servers.Body)
	if err != nil {
		return a.sendUpstreamError(c, "episode servers", err)
	}

	serverID, ok := hianime.FirstServerID(html)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": errNoServers})
	}

	sources, err := a.fetch.Fetch(c.UserContext(), upstream.Request{
		URL:    a.site.SourcesURL(serverID),
		Header: xhrHeader(),
	})
	if err != nil {
		return a.sendUpstreamError(c, "episode sources", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(sources.Body)
}

// AnimeList is Search with the cards already extracted.
func (a *API) AnimeList(c *fiber.Ctx) error {
	page, ok := pageParam(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, "page must be a positive integer")
	}
	resp, err := a.fetch.Fetch(c.UserContext(), upstream.Request{URL: a.site.SearchURL(c.Query("keyword"), page)})
	if err != nil {
		return a.sendUpstreamError(c, "anime list", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"page":    page,
		"anime":   a.site.ParseAnime(resp.Text()),
	})
}

// EpisodeList is Episodes with the items already extracted.
func (a *API) EpisodeList(c *fiber.Ctx) error {
	animeID := c.Query("animeId")
	if animeID == "" {
		return sendError(c, fiber.StatusBadRequest, "animeId required")
	}
	html, err := a.episodeHTML(c.UserContext(), animeID)
	if err != nil {
		return a.sendUpstreamError(c, "episode list", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"episodes": hianime.ParseEpisodes(html),
	})
}

// StreamInfo builds the player URL for an episode without contacting any
// upstream.
func (a *API) StreamInfo(c *fiber.Ctx) error {
	episodeID := c.Query("episodeId")
	if episodeID == "" {
		return sendError(c, fiber.StatusBadRequest, "episodeId required")
	}
	lang, err := hianime.ParseLanguage(c.Query("lang"))
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stream":  a.site.StreamInfo(episodeID, lang),
	})
}

func pageParam(c *fiber.Ctx) (int, bool) {
	raw := c.Query("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}
