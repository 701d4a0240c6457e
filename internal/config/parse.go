package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parse builds an AppConfig from command-line flags, each overridable
// by an EnvPrefix-namespaced environment variable. An explicitly passed
// flag always wins over its environment variable counterpart.
func Parse(args []string) (AppConfig, error) {
	d := Default()
	fs := flag.NewFlagSet("scavengarrd", flag.ContinueOnError)

	bindAddr := fs.String("bindAddr", d.BindAddr, "Local interface address to bind to.")
	port := fs.Int("port", d.Port, "Port to listen on.")
	rootURL := fs.String("rootURL", d.RootURL, "Public base URL used to build proxy-play links.")
	logLevel := fs.String("logLevel", d.LogLevel, `Log level: "debug", "info", "warn", "error".`)
	logEncoding := fs.String("logEncoding", d.LogEncoding, `Log encoding: "json" or "console".`)
	envPrefix := fs.String("envPrefix", d.EnvPrefix, "Prefix for environment variables.")

	cheapSlots := fs.Int("cheapSlots", d.Stremio.MaxConcurrentPlugins, "Concurrency Governor cheap-adapter slot count (0 = auto-tune).")
	expensiveSlots := fs.Int("expensiveSlots", d.Stremio.MaxConcurrentPlaywright, "Concurrency Governor expensive-adapter slot count (0 = auto-tune).")
	probeConcurrency := fs.Int("probeConcurrency", d.Stremio.ProbeConcurrency, "Liveness Probe semaphore size (0 = auto-tune).")

	pluginTimeout := fs.Duration("pluginTimeout", d.PluginTimeout, "Per-adapter call timeout.")
	probeAtStreamTime := fs.Bool("probeAtStreamTime", d.ProbeAtStreamTime, "Enable the liveness probe.")
	maxProbeCount := fs.Int("maxProbeCount", d.MaxProbeCount, "Upper bound on probes per request.")
	probeTimeout := fs.Duration("probeTimeout", d.ProbeTimeout, "Per-probe HEAD request timeout.")
	maxResultsPerPlugin := fs.Int("maxResultsPerPlugin", d.MaxResultsPerPlugin, "Adapter-output cap before filters.")
	validationMaxConcurrent := fs.Int("validationMaxConcurrent", d.ValidationMaxConcurrent, "Hoster-resolve worker pool size (0 = auto-tune).")

	titleMatchThreshold := fs.Float64("titleMatchThreshold", d.TitleMatch.Threshold, "Minimum title similarity for the title-match filter.")
	searchTTL := fs.Duration("searchTtl", d.SearchTTL, "Default search-result cache TTL.")
	circuitFailureThreshold := fs.Int("circuitFailureThreshold", d.CircuitFailureThreshold, "Failures before a breaker opens.")
	circuitCooldown := fs.Duration("circuitCooldown", d.CircuitCooldown, "Breaker cooldown before half-open.")

	tmdbAPIKey := fs.String("tmdbApiKey", d.TmdbAPIKey, "TMDB API key.")
	tmdbLocale := fs.String("tmdbLocale", d.TmdbLocale, "TMDB locale, e.g. de-DE.")
	imdb2MetaAddr := fs.String("imdb2MetaAddr", d.Imdb2MetaAddr, "Optional imdb2meta gRPC address.")
	cinemetaURL := fs.String("cinemetaUrl", d.CinemetaURL, "Cinemeta fallback base URL.")

	cachePath := fs.String("cachePath", d.CachePath, "Path for persisted on-disk caches.")
	cacheMaxMB := fs.Int("cacheMaxMb", d.CacheMaxMB, "Max MB for the in-memory search-result cache.")
	redisAddr := fs.String("redisAddr", d.RedisAddr, "Optional Redis address for the stream-link cache.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if *envPrefix != "" && !strings.HasSuffix(*envPrefix, "_") {
		*envPrefix += "_"
	}
	d.EnvPrefix = *envPrefix

	overrideString(fs, *envPrefix, "bindAddr", "BIND_ADDR", bindAddr)
	overrideInt(fs, *envPrefix, "port", "PORT", port)
	overrideString(fs, *envPrefix, "rootURL", "ROOT_URL", rootURL)
	overrideString(fs, *envPrefix, "logLevel", "LOG_LEVEL", logLevel)
	overrideString(fs, *envPrefix, "logEncoding", "LOG_ENCODING", logEncoding)

	overrideInt(fs, *envPrefix, "cheapSlots", "CHEAP_SLOTS", cheapSlots)
	overrideInt(fs, *envPrefix, "expensiveSlots", "EXPENSIVE_SLOTS", expensiveSlots)
	overrideInt(fs, *envPrefix, "probeConcurrency", "PROBE_CONCURRENCY", probeConcurrency)

	overrideDuration(fs, *envPrefix, "pluginTimeout", "PLUGIN_TIMEOUT", pluginTimeout)
	overrideBool(fs, *envPrefix, "probeAtStreamTime", "PROBE_AT_STREAM_TIME", probeAtStreamTime)
	overrideInt(fs, *envPrefix, "maxProbeCount", "MAX_PROBE_COUNT", maxProbeCount)
	overrideDuration(fs, *envPrefix, "probeTimeout", "PROBE_TIMEOUT", probeTimeout)
	overrideInt(fs, *envPrefix, "maxResultsPerPlugin", "MAX_RESULTS_PER_PLUGIN", maxResultsPerPlugin)
	overrideInt(fs, *envPrefix, "validationMaxConcurrent", "VALIDATION_MAX_CONCURRENT", validationMaxConcurrent)

	overrideFloat(fs, *envPrefix, "titleMatchThreshold", "TITLE_MATCH_THRESHOLD", titleMatchThreshold)
	overrideDuration(fs, *envPrefix, "searchTtl", "SEARCH_TTL", searchTTL)
	overrideInt(fs, *envPrefix, "circuitFailureThreshold", "CIRCUIT_FAILURE_THRESHOLD", circuitFailureThreshold)
	overrideDuration(fs, *envPrefix, "circuitCooldown", "CIRCUIT_COOLDOWN", circuitCooldown)

	overrideString(fs, *envPrefix, "tmdbApiKey", "TMDB_API_KEY", tmdbAPIKey)
	overrideString(fs, *envPrefix, "tmdbLocale", "TMDB_LOCALE", tmdbLocale)
	overrideString(fs, *envPrefix, "imdb2MetaAddr", "IMDB2META_ADDR", imdb2MetaAddr)
	overrideString(fs, *envPrefix, "cinemetaUrl", "CINEMETA_URL", cinemetaURL)

	overrideString(fs, *envPrefix, "cachePath", "CACHE_PATH", cachePath)
	overrideInt(fs, *envPrefix, "cacheMaxMb", "CACHE_MAX_MB", cacheMaxMB)
	overrideString(fs, *envPrefix, "redisAddr", "REDIS_ADDR", redisAddr)

	d.BindAddr = *bindAddr
	d.Port = *port
	d.RootURL = *rootURL
	d.LogLevel = *logLevel
	d.LogEncoding = *logEncoding
	d.Stremio.MaxConcurrentPlugins = *cheapSlots
	d.Stremio.MaxConcurrentPlaywright = *expensiveSlots
	d.Stremio.ProbeConcurrency = *probeConcurrency
	d.PluginTimeout = *pluginTimeout
	d.ProbeAtStreamTime = *probeAtStreamTime
	d.MaxProbeCount = *maxProbeCount
	d.ProbeTimeout = *probeTimeout
	d.MaxResultsPerPlugin = *maxResultsPerPlugin
	d.ValidationMaxConcurrent = *validationMaxConcurrent
	d.TitleMatch.Threshold = *titleMatchThreshold
	d.SearchTTL = *searchTTL
	d.CircuitFailureThreshold = *circuitFailureThreshold
	d.CircuitCooldown = *circuitCooldown
	d.TmdbAPIKey = *tmdbAPIKey
	d.TmdbLocale = *tmdbLocale
	d.Imdb2MetaAddr = *imdb2MetaAddr
	d.CinemetaURL = *cinemetaURL
	d.CachePath = *cachePath
	d.CacheMaxMB = *cacheMaxMB
	d.RedisAddr = *redisAddr

	return d, nil
}

// isArgSet reports whether a flag was actually passed on the command
// line, as opposed to holding its default value.
func isArgSet(fs *flag.FlagSet, arg string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == arg {
			found = true
		}
	})
	return found
}

func overrideString(fs *flag.FlagSet, envPrefix, flagName, envName string, dst *string) {
	if isArgSet(fs, flagName) {
		return
	}
	if val, ok := os.LookupEnv(envPrefix + envName); ok {
		*dst = val
	}
}

func overrideInt(fs *flag.FlagSet, envPrefix, flagName, envName string, dst *int) {
	if isArgSet(fs, flagName) {
		return
	}
	if val, ok := os.LookupEnv(envPrefix + envName); ok {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func overrideFloat(fs *flag.FlagSet, envPrefix, flagName, envName string, dst *float64) {
	if isArgSet(fs, flagName) {
		return
	}
	if val, ok := os.LookupEnv(envPrefix + envName); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func overrideBool(fs *flag.FlagSet, envPrefix, flagName, envName string, dst *bool) {
	if isArgSet(fs, flagName) {
		return
	}
	if val, ok := os.LookupEnv(envPrefix + envName); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func overrideDuration(fs *flag.FlagSet, envPrefix, flagName, envName string, dst *time.Duration) {
	if isArgSet(fs, flagName) {
		return
	}
	if val, ok := os.LookupEnv(envPrefix + envName); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
