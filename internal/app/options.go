package service

import (
	"time"

	"github.com/okian/gametaste/internal/adapters/candidates"
	"github.com/okian/gametaste/internal/adapters/llm"
	"github.com/okian/gametaste/internal/domain/playstyle"
	"github.com/okian/gametaste/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTopK bounds the normalized library.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithRecommendationCount sets the default list size, clamped to 5..10.
func WithRecommendationCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recCount = clampLimit(n)
		}
	}
}

// WithThresholds tunes the playstyle classifier.
func WithThresholds(t playstyle.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithLibrary enables profile lookups.
func WithLibrary(l LibraryFetcher) Option {
	return func(s *Service) {
		if l != nil {
			s.library = l
		}
	}
}

// WithCandidateSource sets where profile lookups find candidates.
func WithCandidateSource(src candidates.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithNarrator enables generated prose.
func WithNarrator(n llm.Narrator) Option {
	return func(s *Service) {
		if n != nil {
			s.narrator = n
		}
	}
}

// WithAnalysisTimeout bounds a whole run.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRunCache sizes the per-run store lookup cache.
func WithRunCache(ttl time.Duration, maxEntries int) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
		if maxEntries > 0 {
			s.cacheMax = maxEntries
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
