// Command scavengarrd is the composition root: parse config, detect
// and auto-tune resources, build every cache/client/registry, wire the
// pipeline into an Orchestrator, mount the HTTP surfaces, and run
// until a signal or the context is cancelled.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scavengarr/scavengarr/internal/adapter"
	"github.com/scavengarr/scavengarr/internal/adapter/hdfilme"
	"github.com/scavengarr/scavengarr/internal/adapter/serienfans"
	"github.com/scavengarr/scavengarr/internal/adapter/streamcloud"
	"github.com/scavengarr/scavengarr/internal/breaker"
	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/concurrency"
	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/hoster"
	"github.com/scavengarr/scavengarr/internal/httpapi"
	"github.com/scavengarr/scavengarr/internal/metadata"
	"github.com/scavengarr/scavengarr/internal/metadata/cinemeta"
	"github.com/scavengarr/scavengarr/internal/metadata/imdb2meta"
	"github.com/scavengarr/scavengarr/internal/metadata/tmdb"
	"github.com/scavengarr/scavengarr/internal/orchestrator"
	"github.com/scavengarr/scavengarr/internal/probe"
	"github.com/scavengarr/scavengarr/internal/resources"
	"github.com/scavengarr/scavengarr/internal/stremiotypes"
	"github.com/scavengarr/scavengarr/internal/streamlink"
)

const version = "0.1.0"

// refTitleTTL is the id-to-title cache lifetime. These mappings barely
// ever change, so it is long.
const refTitleTTL = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := mustLogger("info", "console")

	logger.Info("parsing config")
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		logger.Fatal("couldn't parse config", zap.Error(err))
	}

	if cfg.LogLevel != "info" || cfg.LogEncoding != "console" {
		logger = mustLogger(cfg.LogLevel, cfg.LogEncoding)
	}

	res := resources.Detect()
	logger.Info("detected resources",
		zap.Int("cpuCores", res.CPUCores),
		zap.Int64("memoryBytes", res.MemoryBytes),
		zap.String("cpuSource", res.CPUSource),
		zap.String("memSource", res.MemSource),
		zap.Bool("cgroupLimited", res.CgroupLimited),
	)
	config.AutoTune(&cfg, res)

	if cfgJSON, jsonErr := json.Marshal(cfg); jsonErr == nil {
		logger.Info("parsed and auto-tuned config", zap.ByteString("config", cfgJSON))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	closer := buildAndRun(ctx, cfg, logger)
	defer func() {
		if err := closer(); err != nil {
			logger.Error("error while closing stores", zap.Error(err))
		}
	}()
}

// buildAndRun wires every collaborator, starts the HTTP server, and
// blocks until ctx is cancelled (SIGINT/SIGTERM), then shuts the
// server down gracefully. Returns a closer aggregating every store
// opened along the way.
func buildAndRun(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (closer func() error) {
	var closers []func() error
	closer = func() error {
		var result error
		for _, c := range closers {
			if err := c(); err != nil {
				result = multierr.Append(result, err)
			}
		}
		return result
	}

	// Stream-link cache: Redis when configured (shared across
	// instances), else a local BadgerDB so /play ids survive restarts.
	var streamlinkStore cache.Store
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr, "")
		closers = append(closers, redisStore.Close)
		streamlinkStore = redisStore
	} else {
		cachePath := cfg.CachePath
		if cachePath == "" {
			cachePath = "./scavengarr-cache"
		}
		db, err := cache.OpenBadgerStore(cachePath, logger)
		if err != nil {
			logger.Fatal("couldn't open BadgerDB", zap.Error(err))
		}
		closers = append(closers, db.Close)
		go cache.RunValueLogGC(ctx, db, 0.5, logger)
		streamlinkStore = cache.NewBadgerStore(db, "")
	}

	// Reference-title cache: small, hot, long-TTL, in-process.
	reftitleStore := cache.NewMemStore(refTitleTTL, time.Hour)
	closers = append(closers, reftitleStore.Close)

	// Search-result cache: allocation-free reads on the hot path, sized
	// from cacheMaxMb.
	searchStore := cache.NewFastStore(cfg.CacheMaxMB * 1024 * 1024)

	// Raw Cinemeta payload cache, separate from the search-result cache
	// so a flood of search entries can't evict metadata.
	metaCache := fastcache.New(cfg.CacheMaxMB * 1024 * 1024)

	// Metadata sources. imdb2meta, when configured, is tried first
	// and falls back to TMDB for anything it can't resolve (tmdb:<id>
	// ids, or when the gRPC service is unreachable); otherwise TMDB is
	// primary and Cinemeta is the fallback.
	tmdbClient := tmdb.NewClient(cfg.TmdbAPIKey, cfg.TmdbLocale, cfg.PluginTimeout, logger)
	cinemetaClient := cinemeta.NewClient(cfg.CinemetaURL, cfg.PluginTimeout, metaCache, logger)

	var primary, secondary metadata.Source
	if cfg.Imdb2MetaAddr != "" {
		imdbClient, err := imdb2meta.NewClient(ctx, cfg.Imdb2MetaAddr, cfg.PluginTimeout, logger)
		if err != nil {
			logger.Warn("couldn't connect to imdb2meta, falling back to TMDB-only", zap.Error(err))
			primary, secondary = tmdbClient, cinemetaClient
		} else {
			closers = append(closers, imdbClient.Close)
			primary, secondary = imdbClient, tmdbClient
		}
	} else {
		primary, secondary = tmdbClient, cinemetaClient
	}

	resolver := metadata.NewResolver(primary, secondary, metadata.NewStoreCache(reftitleStore, refTitleTTL), logger)

	// Governor, breaker registry, and the shared invoker.
	governor := concurrency.NewGovernor(cfg.Stremio.MaxConcurrentPlugins, cfg.Stremio.MaxConcurrentPlaywright, nil)
	breakers := breaker.NewRegistry(cfg.CircuitFailureThreshold, cfg.CircuitCooldown)
	invoker := adapter.NewInvoker(breakers, searchStore, cfg.SearchTTL, cfg.PluginTimeout, cfg.MaxResultsPerPlugin, logger)

	adapters := []adapter.Adapter{
		hdfilme.New(),
		serienfans.New(),
		streamcloud.New(),
	}

	// Hoster resolvers: empty by default, so every stream routes
	// through the proxy-play fallback instead. Deployments with a
	// premium account Register an internal/hoster/oauth resolver here
	// before passing hosters to the Orchestrator.
	hosters := hoster.NewRegistry(logger)

	links := streamlink.New(streamlinkStore, cfg.SearchTTL)

	var prober probe.Prober
	if cfg.ProbeAtStreamTime {
		prober = probe.NewHTTPProber(cfg.ProbeTimeout)
	}

	orch := orchestrator.New(governor, invoker, resolver, hosters, links, adapters, prober, cfg.RootURL, cfg, logger)

	manifest := buildManifest()

	app := httpapi.New(orch, links, hosters, tmdbClient, manifest, "Scavengarr", cfg.LogLevel == "debug", logger)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port)
	listenErrCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		listenErrCh <- app.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("error during graceful shutdown", zap.Error(err))
		}
	case err := <-listenErrCh:
		if err != nil {
			logger.Error("http server stopped unexpectedly", zap.Error(err))
		}
	}

	return closer
}

func mustLogger(level, encoding string) *zap.Logger {
	var zcfg zap.Config
	if encoding == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Encoding = encoding
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func buildManifest() stremiotypes.Manifest {
	return stremiotypes.Manifest{
		ID:          "community.scavengarr",
		Name:        "Scavengarr",
		Description: "Aggregates German-language streaming/DDL sites behind a Stremio addon and a Torznab indexer.",
		Version:     version,
		Resources:   []string{"catalog", "stream"},
		Types:       []string{"movie", "series"},
		Catalogs: []stremiotypes.CatalogItem{
			{Type: "movie", Name: "Scavengarr Trending", ID: "scavengarr-movies", Extra: []stremiotypes.ExtraItem{{Name: "search"}}},
			{Type: "series", Name: "Scavengarr Trending", ID: "scavengarr-series", Extra: []stremiotypes.ExtraItem{{Name: "search"}}},
		},
		IDPrefixes: []string{"tt", "tmdb:"},
		BehaviorHints: stremiotypes.ManifestHints{
			Adult:        false,
			P2P:          false,
			Configurable: false,
		},
	}
}
