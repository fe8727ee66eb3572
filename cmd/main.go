package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andesco/animeladder/handlers"
	"github.com/andesco/animeladder/pkg/hianime"
	"github.com/andesco/animeladder/pkg/upstream"

	"github.com/akamensky/argparse"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
		os.Exit(1)
	}

	parser := argparse.NewParser("animeladder", "Scrape-and-forward proxy for anime listings")

	port := parser.String("p", "port", &argparse.Options{
		Required: false,
		Default:  getenv("PORT", "8080"),
		Help:     "Port the webserver will listen on",
	})
	prefork := parser.Flag("P", "prefork", &argparse.Options{
		Required: false,
		Default:  os.Getenv("PREFORK") == "true",
		Help:     "Spawn multiple listener processes sharing the port",
	})
	ruleset := parser.String("r", "ruleset", &argparse.Options{
		Required: false,
		Default:  os.Getenv("RULESET"),
		Help:     "File or directory of ruleset .yaml files, ';' separated",
	})
	base := parser.String("u", "upstream", &argparse.Options{
		Required: false,
		Default:  getenv("UPSTREAM_BASE", hianime.DefaultBase),
		Help:     "Base URL of the upstream site",
	})
	streamBase := parser.String("s", "stream-base", &argparse.Options{
		Required: false,
		Default:  getenv("STREAM_BASE", hianime.DefaultStreamBase),
		Help:     "Base URL used to build episode player links",
	})
	debug := parser.Flag("d", "debug", &argparse.Options{
		Required: false,
		Help:     "Enable debug logging",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger := newLogger(*debug)

	rules, err := upstream.LoadRuleset(*ruleset, logger)
	if err != nil {
		logger.Fatal("could not load ruleset", "err", err)
	}

	opts, err := upstream.OptionsFromEnv(rules)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	opts.Logger = logger.WithPrefix("upstream")
	if len(opts.AllowedDomains) == 0 {
		logger.Warn("ALLOWED_DOMAINS is empty, the image proxy will fetch any host")
	}

	client, err := upstream.NewClient(opts)
	if err != nil {
		logger.Fatal("could not build upstream client", "err", err)
	}

	site, err := hianime.NewSite(*base, *streamBase)
	if err != nil {
		logger.Fatal("invalid upstream", "err", err)
	}

	api := handlers.NewAPI(client, site, logger.WithPrefix("api"), os.Getenv("SESSION_COOKIE"))
	app := handlers.NewApp(api, handlers.AppOptions{Prefork: *prefork, AccessLog: true})

	logger.Info("starting", "port", *port, "upstream", site.Base(), "timeout", opts.Timeout)
	if err := app.Listen(":" + strings.TrimPrefix(*port, ":")); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "animeladder",
	})

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := log.ParseLevel(raw); err == nil {
			level = parsed
		} else {
			logger.Warn("ignoring LOG_LEVEL", "value", raw)
		}
	}
	if debug {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
