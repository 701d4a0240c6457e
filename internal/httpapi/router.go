// Package httpapi builds the two client-facing HTTP surfaces on top of
// gofiber/fiber/v2: a Stremio manifest/catalog/stream router and a
// Torznab-style XML indexer router, plus the proxy-play redirect
// endpoint.
package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/hoster"
	"github.com/scavengarr/scavengarr/internal/metadata/tmdb"
	"github.com/scavengarr/scavengarr/internal/orchestrator"
	"github.com/scavengarr/scavengarr/internal/stremiotypes"
	"github.com/scavengarr/scavengarr/internal/streamlink"
	"github.com/scavengarr/scavengarr/internal/torznab"
)

// CatalogSource backs the browseable-catalog handler. Satisfied by
// *tmdb.Client; an interface so tests can substitute a fake without
// hitting the network.
type CatalogSource interface {
	TrendingMovies(ctx context.Context) ([]tmdb.CatalogEntry, error)
	TrendingTV(ctx context.Context) ([]tmdb.CatalogEntry, error)
	SearchMovies(ctx context.Context, query string) ([]tmdb.CatalogEntry, error)
	SearchTV(ctx context.Context, query string) ([]tmdb.CatalogEntry, error)
}

// Server wires the orchestrator, the stream-link store and the hoster
// registry into a fiber.App. One Server is built once in
// cmd/scavengarrd and run for the process lifetime.
type Server struct {
	orch     *orchestrator.Orchestrator
	links    *streamlink.Store
	hosters  *hoster.Registry
	catalog  CatalogSource
	manifest stremiotypes.Manifest
	caps     torznab.Capabilities
	devMode  bool
	logger   *zap.Logger
}

// New builds the fiber.App and mounts every route. serverTitle names
// the Torznab indexer in its capabilities response. devMode controls
// whether the Torznab surface surfaces upstream failures as 502s (dev)
// or hides them behind an empty 200 feed (prod). catalog may be nil, in
// which case the catalog route always returns an empty metas list.
func New(orch *orchestrator.Orchestrator, links *streamlink.Store, hosters *hoster.Registry, catalog CatalogSource, manifest stremiotypes.Manifest, serverTitle string, devMode bool, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orch:     orch,
		links:    links,
		hosters:  hosters,
		catalog:  catalog,
		manifest: manifest,
		caps:     torznab.DefaultCapabilities(serverTitle),
		devMode:  devMode,
		logger:   logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: strings.Join([]string{
			"Accept", "Accept-Language", "Content-Type", "Origin",
			"Accept-Encoding", "Content-Language", "X-Requested-With",
		}, ","),
		AllowMethods: "GET",
	}))
	app.Use(s.timerMiddleware)
	app.Use(s.loggingMiddleware)

	app.Get("/manifest.json", s.manifestHandler)
	app.Get("/catalog/:type/:id.json", s.catalogHandler)
	app.Get("/stream/:type/:id.json", s.streamHandler)

	app.Get("/torznab/api", s.torznabHandler)
	app.Get("/play/:id", s.playHandler)
	app.Get("/health", s.healthHandler)

	return app
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// timerMiddleware stamps the request's start time into locals for
// loggingMiddleware to read back.
func (s *Server) timerMiddleware(c *fiber.Ctx) error {
	c.Locals("start", time.Now())
	return c.Next()
}

// loggingMiddleware logs method/path/duration after the handler chain
// completes.
func (s *Server) loggingMiddleware(c *fiber.Ctx) error {
	err := c.Next()

	start, _ := c.Locals("start").(time.Time)
	var duration time.Duration
	if !start.IsZero() {
		duration = time.Since(start)
	}
	s.logger.Debug("handled request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("ip", c.IP()),
		zap.Duration("duration", duration),
	)
	return err
}
