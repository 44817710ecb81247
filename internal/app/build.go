package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/gametaste/internal/adapters/candidates"
	"github.com/okian/gametaste/internal/adapters/llm"
	"github.com/okian/gametaste/internal/adapters/steam"
	"github.com/okian/gametaste/internal/config"
	"github.com/okian/gametaste/internal/domain/playstyle"
	"github.com/okian/gametaste/pkg/logger"
)

// FromConfig assembles a Service and its collaborators from cfg.
// Profile lookups are enabled only when a Steam API key is configured;
// narratives only when an LLM key is.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.GetOrNop()
	}
	opts := []Option{
		WithLogger(log.Named("service")),
		WithTopK(cfg.TopK),
		WithRecommendationCount(cfg.RecommendationCount),
		WithAnalysisTimeout(cfg.AnalysisTimeout()),
		WithRunCache(cfg.CacheTTL(), cfg.CacheMaxEntries),
		WithThresholds(playstyle.Thresholds{
			ImmersiveConcentration: cfg.ImmersiveConcentration,
			ExplorerBreadth:        cfg.ExplorerBreadth,
			CasualMinTitles:        cfg.CasualMinTitles,
			CasualMaxConcentration: cfg.CasualMaxConcentration,
		}),
	}

	hc := &http.Client{Timeout: cfg.RequestTimeout()}

	if cfg.SteamAPIKey != "" {
		client := steam.NewClient(cfg.SteamAPIKey,
			steam.WithHTTPClient(hc),
			steam.WithAPIBaseURL(cfg.SteamAPIBaseURL),
			steam.WithStoreBaseURL(cfg.StoreBaseURL),
			steam.WithLocale(cfg.StoreLanguage, cfg.StoreCountry),
			steam.WithStoreInterval(cfg.FetchInterval()),
			steam.WithConcurrency(cfg.FetchConcurrency),
			steam.WithLogger(log),
		)
		opts = append(opts, WithLibrary(steam.NewLibrary(client)))

		if cfg.CandidatesFile == "" {
			opts = append(opts, WithCandidateSource(candidates.NewStoreSource(client,
				candidates.WithSearchLabels(cfg.CandidateSearchLabels),
				candidates.WithPoolSize(cfg.CandidatePoolSize),
				candidates.WithStoreLogger(log),
			)))
		}
	}

	if cfg.CandidatesFile != "" {
		src, err := candidates.LoadFile(cfg.CandidatesFile)
		if err != nil {
			return nil, fmt.Errorf("candidates file: %w", err)
		}
		log.Info(ctx, "candidate catalog loaded",
			logger.String("path", cfg.CandidatesFile),
			logger.Int("titles", src.Len()),
			logger.Int("skipped", src.Skipped()),
		)
		opts = append(opts, WithCandidateSource(src))
	}

	if cfg.LLMEnabled() {
		n, err := llm.New(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMAPIKey,
			llm.WithHTTPClient(hc),
			llm.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("narrator: %w", err)
		}
		opts = append(opts, WithNarrator(n))
	}

	return New(opts...), nil
}
