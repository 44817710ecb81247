// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and match the koanf struct tags (env: GAMETASTE_<KEY>).
// - New() returns defaults; Load(ctx) layers file and env on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TopK bounds the normalized library to the K most played titles.
	TopK int `koanf:"top_k"`

	// RecommendationCount is N, the size of the ranked recommendation list (5-10).
	RecommendationCount int `koanf:"recommendation_count"`

	// AnalysisTimeoutMS bounds a whole profile analysis, fetches included.
	AnalysisTimeoutMS int `koanf:"analysis_timeout_ms"`

	// Playstyle thresholds.
	ImmersiveConcentration float64 `koanf:"immersive_concentration"`
	ExplorerBreadth        float64 `koanf:"explorer_breadth"`
	CasualMinTitles        int     `koanf:"casual_min_titles"`
	CasualMaxConcentration float64 `koanf:"casual_max_concentration"`

	// Steam Web API (profiles, owned games) and Store API (app details, search).
	SteamAPIKey     string `koanf:"steam_api_key"`
	SteamAPIBaseURL string `koanf:"steam_api_base_url"`
	StoreBaseURL    string `koanf:"store_base_url"`
	StoreLanguage   string `koanf:"store_language"`
	StoreCountry    string `koanf:"store_country"`

	// FetchConcurrency bounds parallel store lookups; FetchIntervalMS paces them.
	FetchConcurrency int `koanf:"fetch_concurrency"`
	FetchIntervalMS  int `koanf:"fetch_interval_ms"`
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Run-scoped lookup cache.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// CandidatesFile points at a JSON/YAML candidate catalog. When empty the
	// store search catalog is used.
	CandidatesFile        string `koanf:"candidates_file"`
	CandidateSearchLabels int    `koanf:"candidate_search_labels"`
	CandidatePoolSize     int    `koanf:"candidate_pool_size"`

	// OpenAI-compatible text generation. Disabled when LLMAPIKey is empty.
	LLMEndpoint string `koanf:"llm_endpoint"`
	LLMModel    string `koanf:"llm_model"`
	LLMAPIKey   string `koanf:"llm_api_key"`

	// MaxBodyBytes caps POST /analyze payloads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		TopK:                   50,
		RecommendationCount:    8,
		AnalysisTimeoutMS:      60_000,
		ImmersiveConcentration: 0.6,
		ExplorerBreadth:        0.5,
		CasualMinTitles:        30,
		CasualMaxConcentration: 0.3,
		SteamAPIBaseURL:        "https://api.steampowered.com",
		StoreBaseURL:           "https://store.steampowered.com",
		StoreLanguage:          "english",
		StoreCountry:           "US",
		FetchConcurrency:       4,
		FetchIntervalMS:        300,
		RequestTimeoutMS:       10_000,
		CacheTTLSeconds:        3600,
		CacheMaxEntries:        1000,
		CandidateSearchLabels:  3,
		CandidatePoolSize:      40,
		LLMEndpoint:            "https://api.openai.com/v1/chat/completions",
		LLMModel:               "gpt-4o-mini",
		MaxBodyBytes:           4 << 20,
	}
}

// Validate checks ranges that would otherwise surface as confusing runtime behavior.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, c.TopK)
	case c.RecommendationCount < 5 || c.RecommendationCount > 10:
		return fmt.Errorf("%w: recommendation_count must be within 5..10, got %d", ErrInvalidConfig, c.RecommendationCount)
	case !unitInterval(c.ImmersiveConcentration), !unitInterval(c.ExplorerBreadth), !unitInterval(c.CasualMaxConcentration):
		return fmt.Errorf("%w: playstyle ratios must be within (0,1]", ErrInvalidConfig)
	case c.CasualMinTitles < 1:
		return fmt.Errorf("%w: casual_min_titles must be positive", ErrInvalidConfig)
	case c.FetchConcurrency < 1:
		return fmt.Errorf("%w: fetch_concurrency must be positive", ErrInvalidConfig)
	case c.FetchIntervalMS < 0 || c.RequestTimeoutMS < 1 || c.AnalysisTimeoutMS < 1:
		return fmt.Errorf("%w: timings must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 1 || c.CacheMaxEntries < 1:
		return fmt.Errorf("%w: cache ttl and size must be positive", ErrInvalidConfig)
	case c.CandidatePoolSize < 1 || c.CandidateSearchLabels < 1:
		return fmt.Errorf("%w: candidate pool settings must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}

func unitInterval(v float64) bool { return v > 0 && v <= 1 }

// AnalysisTimeout returns AnalysisTimeoutMS as a duration.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutMS) * time.Millisecond
}

// FetchInterval returns FetchIntervalMS as a duration.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.FetchIntervalMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LLMEnabled reports whether the text-generation collaborator is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != "" && c.LLMEndpoint != "" && c.LLMModel != ""
}
