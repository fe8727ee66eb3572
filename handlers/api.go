package handlers

import (
	"context"

	"github.com/andesco/animeladder/pkg/hianime"
	"github.com/andesco/animeladder/pkg/upstream"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Fetcher performs one outbound request. *upstream.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

// API holds what every endpoint needs. Handlers share no mutable state.
type API struct {
	fetch         Fetcher
	site          hianime.Site
	log           *log.Logger
	sessionCookie string
}

func NewAPI(fetch Fetcher, site hianime.Site, logger *log.Logger, sessionCookie string) *API {
	if logger == nil {
		logger = log.Default()
	}
	if sessionCookie == "" {
		sessionCookie = DefaultSessionCookie
	}
	return &API{fetch: fetch, site: site, log: logger, sessionCookie: sessionCookie}
}

func (a *API) Register(r fiber.Router) {
	api := r.Group("/api")

	api.Get("/health", a.Health)
	api.Get("/image-proxy", a.ImageProxy)

	anime := api.Group("/anime")
	anime.Get("/search", a.Search)
	anime.Get("/latest", a.Latest)
	anime.Get("/trending", a.Trending)
	anime.Get("/episodes", a.Episodes)
	anime.Get("/episode-sources", a.EpisodeSources)
	anime.Get("/list", a.AnimeList)
	anime.Get("/episode-list", a.EpisodeList)
	anime.Get("/stream-info", a.StreamInfo)

	auth := api.Group("/auth")
	auth.Get("/me", a.Me)
	auth.Post("/logout", a.Logout)
}

type AppOptions struct {
	Prefork   bool
	AccessLog bool
}

// NewApp builds the Fiber application with CORS, panic recovery and the API
// routes mounted.
func NewApp(a *API, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               opts.Prefork,
		AppName:               "animeladder",
		DisableStartupMessage: !opts.AccessLog,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${latency} ${method} ${path}?${queryParams}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, X-Requested-With, Content-Type, Accept, Authorization",
	}))

	a.Register(app)
	return app
}
