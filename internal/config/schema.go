// Package config defines Scavengarr's process-wide configuration
// struct, its flag/env parsing, auto-tune derivation, and validation.
// Every flag has a namespaced environment-variable override, and the
// resulting struct is passed at construction to every collaborator; no
// global state.
package config

import "time"

// StremioTuning holds the values the concurrency governor and liveness
// probe are sized from.
type StremioTuning struct {
	MaxConcurrentPlugins    int `json:"maxConcurrentPlugins"`    // -cheapSlots flag, bounds [2,30]
	MaxConcurrentPlaywright int `json:"maxConcurrentPlaywright"` // -expensiveSlots flag, bounds [1,10]
	ProbeConcurrency        int `json:"probeConcurrency"`        // bounds >= 4, capped min(cpu*4,100)
}

// TitleMatchConfig holds the title-match filter's tunables.
type TitleMatchConfig struct {
	Threshold           float64 `json:"titleMatchThreshold"`
	YearBonus           float64 `json:"titleYearBonus"`
	YearPenalty         float64 `json:"titleYearPenalty"`
	SequelPenalty       float64 `json:"titleSequelPenalty"`
	YearToleranceMovie  int     `json:"titleYearToleranceMovie"`
	YearToleranceSeries int     `json:"titleYearToleranceSeries"`
}

// ScoringConfig holds the tables stream normalization and scoring run
// on.
type ScoringConfig struct {
	LanguageScores       map[string]int `json:"languageScores"`
	DefaultLanguageScore int            `json:"defaultLanguageScore"`
	QualityMultiplier    int            `json:"qualityMultiplier"`
	HosterScores         map[string]int `json:"hosterScores"`
	SizeBonusMinBytes    int64          `json:"sizeBonusMinBytes"`
	SizeBonusMaxBytes    int64          `json:"sizeBonusMaxBytes"`
	SizeBonus            int            `json:"sizeBonus"`
}

// AppConfig is the single, process-wide configuration struct. It is
// built once in cmd/scavengarrd/main.go and passed down to every
// collaborator by constructor injection.
type AppConfig struct {
	BindAddr string `json:"bindAddr"`
	Port     int    `json:"port"`
	RootURL  string `json:"rootURL"`

	LogLevel    string `json:"logLevel"`
	LogEncoding string `json:"logEncoding"` // "json" or "console"

	EnvPrefix string `json:"envPrefix"`

	Stremio StremioTuning `json:"stremio"`

	PluginTimeout             time.Duration `json:"pluginTimeoutSeconds"`
	ProbeAtStreamTime         bool          `json:"probeAtStreamTime"`
	MaxProbeCount             int           `json:"maxProbeCount"`
	ProbeTimeout              time.Duration `json:"probeTimeoutSeconds"`
	MaxResultsPerPlugin       int           `json:"maxResultsPerPlugin"`
	ValidationMaxConcurrent   int           `json:"validationMaxConcurrent"`

	TitleMatch TitleMatchConfig `json:"titleMatch"`
	Scoring    ScoringConfig    `json:"scoring"`

	SearchTTL               time.Duration `json:"searchTtlSeconds"`
	CircuitFailureThreshold int           `json:"circuitFailureThreshold"`
	CircuitCooldown         time.Duration `json:"circuitCooldownSeconds"`

	TmdbAPIKey    string `json:"tmdbApiKey"`
	TmdbLocale    string `json:"tmdbLocale"`
	Imdb2MetaAddr string `json:"imdb2MetaAddr"`
	CinemetaURL   string `json:"cinemetaUrl"`

	CachePath    string `json:"cachePath"`
	CacheMaxMB   int    `json:"cacheMaxMb"`
	RedisAddr    string `json:"redisAddr"`

	AdapterBaseURLs map[string]string `json:"adapterBaseUrls"`
}

// Default returns a config populated with conservative defaults,
// before any flag/env overrides or auto-tune pass is applied.
func Default() AppConfig {
	return AppConfig{
		BindAddr:    "localhost",
		Port:        8080,
		RootURL:     "http://localhost:8080",
		LogLevel:    "info",
		LogEncoding: "console",
		Stremio: StremioTuning{
			MaxConcurrentPlugins:    2,
			MaxConcurrentPlaywright: 1,
			ProbeConcurrency:        4,
		},
		PluginTimeout:           10 * time.Second,
		ProbeAtStreamTime:       false,
		MaxProbeCount:           20,
		ProbeTimeout:            3 * time.Second,
		MaxResultsPerPlugin:     50,
		ValidationMaxConcurrent: 5,
		TitleMatch: TitleMatchConfig{
			Threshold:           0.6,
			YearBonus:           0.1,
			YearPenalty:         0.2,
			SequelPenalty:       0.5,
			YearToleranceMovie:  1,
			YearToleranceSeries: 0,
		},
		Scoring: ScoringConfig{
			LanguageScores:       map[string]int{"de": 100, "en": 20},
			DefaultLanguageScore: 0,
			QualityMultiplier:    10,
			HosterScores:         map[string]int{},
			SizeBonusMinBytes:    0,
			SizeBonusMaxBytes:    0,
			SizeBonus:            0,
		},
		SearchTTL:               24 * time.Hour,
		CircuitFailureThreshold: 5,
		CircuitCooldown:         60 * time.Second,
		TmdbLocale:              "de-DE",
		CinemetaURL:             "https://v3-cinemeta.strem.io",
		CacheMaxMB:              32,
		AdapterBaseURLs:         map[string]string{},
	}
}
