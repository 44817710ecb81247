// Package service runs the taste analysis pipeline and wires it to the
// library, candidate and narrative collaborators used by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/gametaste/internal/adapters/cache"
	"github.com/okian/gametaste/internal/adapters/candidates"
	"github.com/okian/gametaste/internal/adapters/llm"
	"github.com/okian/gametaste/internal/adapters/steam"
	"github.com/okian/gametaste/internal/domain/catalog"
	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/internal/domain/playstyle"
	"github.com/okian/gametaste/internal/domain/preference"
	"github.com/okian/gametaste/internal/domain/report"
	"github.com/okian/gametaste/internal/domain/scoring"
	"github.com/okian/gametaste/pkg/logger"
	"github.com/okian/gametaste/pkg/metrics"
)

const (
	minRecommendations     = 5
	maxRecommendations     = 10
	defaultRecommendations = 8
	narrativeTopTitles     = 10
)

// LibraryFetcher loads a user's library from a profile source.
type LibraryFetcher interface {
	Fetch(ctx context.Context, ref steam.ProfileRef, topK int, dc *steam.DetailsCache) (*steam.Snapshot, error)
}

// AnalyzeRequest is an offline run over caller-supplied data.
type AnalyzeRequest struct {
	Library    []model.RawTitle       `json:"library"`
	Candidates []model.CandidateTitle `json:"candidates"`
	// Limit is the list size; 0 means the configured default. Clamped to 5..10.
	Limit int `json:"limit,omitempty"`
	// SkippedCandidates counts catalog entries dropped while decoding.
	SkippedCandidates int `json:"-"`
}

// UnmarshalJSON decodes library and catalog entries one at a time, so an
// entry of the wrong shape is skipped rather than failing the request.
func (r *AnalyzeRequest) UnmarshalJSON(b []byte) error {
	var wire struct {
		Library    []json.RawMessage `json:"library"`
		Candidates []json.RawMessage `json:"candidates"`
		Limit      int               `json:"limit"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	r.Library = catalog.DecodeRecords(wire.Library)
	r.Candidates, r.SkippedCandidates = candidates.DecodeElements(wire.Candidates)
	r.Limit = wire.Limit
	return nil
}

// ProfileSummary describes the fetched profile of a lookup run.
type ProfileSummary struct {
	SteamID string             `json:"steam_id"`
	Stats   model.LibraryStats `json:"stats"`
}

// Analysis is the result of one run.
type Analysis struct {
	RunID      string            `json:"run_id"`
	Profile    *ProfileSummary   `json:"profile,omitempty"`
	Tier       model.Tier        `json:"tier"`
	Metrics    model.Metrics     `json:"metrics"`
	Playstyles []playstyle.Match `json:"playstyles"`
	Report     model.Report      `json:"report"`
	Narrative  *llm.Narrative    `json:"narrative,omitempty"`
	Titles     int               `json:"titles"`
	Rejected   int               `json:"rejected"`
	Dropped    int               `json:"dropped"`
	Warnings   []string          `json:"warnings"`
	DurationMS float64           `json:"duration_ms"`
	library    *model.Library
}

// Library returns the normalized library the analysis was computed from.
func (a *Analysis) Library() *model.Library { return a.library }

// Service implements the API dependencies for taste analysis.
type Service struct {
	mu sync.RWMutex

	normalizer *catalog.Normalizer
	classifier *playstyle.Classifier
	scorer     *scoring.Scorer
	library    LibraryFetcher
	source     candidates.Source
	narrator   llm.Narrator

	topK       int
	recCount   int
	thresholds playstyle.Thresholds
	timeout    time.Duration
	cacheTTL   time.Duration
	cacheMax   int

	runs     atomic.Int64
	failures atomic.Int64
	lastRun  time.Time

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topK:       catalog.DefaultTopK,
		recCount:   defaultRecommendations,
		thresholds: playstyle.DefaultThresholds(),
		timeout:    time.Minute,
		cacheTTL:   time.Hour,
		cacheMax:   1000,
		logger:     logger.GetOrNop().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.normalizer = catalog.NewNormalizer(catalog.WithTopK(s.topK), catalog.WithLogger(s.logger.Named("normalizer")))
	s.classifier = playstyle.NewClassifier(playstyle.WithThresholds(s.thresholds))
	s.scorer = scoring.NewScorer()
	return s
}

// Analyze runs the pipeline over a supplied library and candidate catalog.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	r := s.newRun()
	if req.Limit < 0 {
		return nil, s.finish(ctx, r, nil, fmt.Errorf("%w: negative limit", ErrInvalidRequest))
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owned := make(map[int64]struct{}, len(req.Library))
	for _, t := range req.Library {
		owned[t.ID] = struct{}{}
	}
	stats := catalog.Summarize(req.Library)

	a, err := r.execute(ctx, req.Library, s.limit(req.Limit), owned, func(context.Context, model.Distribution) ([]model.CandidateTitle, error) {
		return req.Candidates, nil
	})
	if err != nil {
		return nil, s.finish(ctx, r, nil, err)
	}
	if req.SkippedCandidates > 0 {
		metrics.RecordErrorByComponent("candidates", "decode")
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d malformed catalog entries skipped", req.SkippedCandidates))
	}
	a.Tier = playstyle.Tier(stats.TotalPlaytimeHours, stats.OwnedCount)
	s.narrate(ctx, r, a, stats)
	return a, s.finish(ctx, r, a, nil)
}

// AnalyzeProfile fetches a profile's library, pulls candidates for its
// strongest labels and runs the pipeline.
func (s *Service) AnalyzeProfile(ctx context.Context, profile string, limit int) (*Analysis, error) {
	r := s.newRun()
	if s.library == nil || s.source == nil {
		return nil, s.finish(ctx, r, nil, ErrNotConfigured)
	}
	if limit < 0 {
		return nil, s.finish(ctx, r, nil, fmt.Errorf("%w: negative limit", ErrInvalidRequest))
	}
	ref, err := steam.ParseProfile(profile)
	if err != nil {
		return nil, s.finish(ctx, r, nil, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r.log.Info(ctx, "profile analysis started", logger.String("kind", string(ref.Kind)))

	// one cache per run; lookups shared by the library and candidate fetches
	dc := steam.NewDetailsCache(cache.WithTTL(s.cacheTTL), cache.WithMaxSize(s.cacheMax))

	start := time.Now()
	snap, err := s.library.Fetch(ctx, ref, s.topK, dc)
	metrics.RecordStageLatency("fetch_library", float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, s.finish(ctx, r, nil, err)
	}

	a, err := r.execute(ctx, snap.Titles, s.limit(limit), snap.Owned, func(ctx context.Context, dist model.Distribution) ([]model.CandidateTitle, error) {
		top := dist.Top(maxRecommendations)
		labels := make([]string, len(top))
		for i, lw := range top {
			labels[i] = lw.Label
		}
		start := time.Now()
		defer func() {
			metrics.RecordStageLatency("fetch_candidates", float64(time.Since(start).Milliseconds()))
		}()
		return s.source.Candidates(ctx, candidates.Request{Labels: labels, Details: dc})
	})
	if err != nil {
		return nil, s.finish(ctx, r, nil, err)
	}
	a.Profile = &ProfileSummary{SteamID: snap.SteamID, Stats: snap.Stats}
	a.Tier = playstyle.Tier(snap.Stats.TotalPlaytimeHours, snap.Stats.OwnedCount)
	s.narrate(ctx, r, a, snap.Stats)
	return a, s.finish(ctx, r, a, nil)
}

type run struct {
	id    string
	start time.Time
	log   logger.Logger
	svc   *Service
}

func (s *Service) newRun() *run {
	id := uuid.NewString()
	return &run{id: id, start: time.Now(), log: s.logger.With(logger.String("run", id)), svc: s}
}

type candidateFunc func(ctx context.Context, dist model.Distribution) ([]model.CandidateTitle, error)

// execute runs normalize, aggregate, classify, score and assemble.
// Candidate lookup failures and short candidate lists become warnings.
func (r *run) execute(ctx context.Context, raw []model.RawTitle, limit int, owned map[int64]struct{}, candidatesFor candidateFunc) (*Analysis, error) {
	s := r.svc
	lib, err := s.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	dist, m, err := preference.Aggregate(lib)
	if err != nil {
		return nil, err
	}
	matches := s.classifier.Evaluate(m)
	labels := make([]model.Label, len(matches))
	for i, mt := range matches {
		labels[i] = mt.Label
	}

	a := &Analysis{
		RunID:      r.id,
		Metrics:    m,
		Playstyles: matches,
		Titles:     len(lib.Titles),
		Rejected:   len(lib.Rejected),
		Dropped:    lib.Dropped,
		Warnings:   []string{},
		library:    lib,
	}
	if a.Rejected > 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d malformed records skipped", a.Rejected))
	}

	cands, err := candidatesFor(ctx, dist)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.log.Warn(ctx, "candidate lookup failed", logger.Error(err))
		metrics.RecordErrorByComponent("candidates", "lookup")
		a.Warnings = append(a.Warnings, "candidate catalog unavailable: "+err.Error())
	}

	for id := range lib.OwnedIDs() {
		owned[id] = struct{}{}
	}
	recs, err := s.scorer.Score(dist, cands, owned, limit)
	var ice *scoring.InsufficientCandidatesError
	switch {
	case errors.As(err, &ice):
		r.log.Info(ctx, "fewer recommendations than requested",
			logger.Int("want", ice.Want),
			logger.Int("have", ice.Have),
		)
		a.Warnings = append(a.Warnings, ice.Error())
	case err != nil:
		return nil, err
	}

	rep, err := report.Assemble(labels, dist, recs)
	if err != nil {
		return nil, err
	}
	a.Report = rep
	return a, nil
}

func (s *Service) narrate(ctx context.Context, r *run, a *Analysis, stats model.LibraryStats) {
	if s.narrator == nil {
		return
	}
	top := a.library.Titles
	if len(top) > narrativeTopTitles {
		top = top[:narrativeTopTitles]
	}
	start := time.Now()
	n, err := s.narrator.Narrate(ctx, llm.NarrativeInput{
		Tier:      a.Tier,
		Metrics:   a.Metrics,
		Report:    a.Report,
		TopTitles: top,
		Library:   stats,
	})
	metrics.RecordStageLatency("narrate", float64(time.Since(start).Milliseconds()))
	if err != nil {
		r.log.Warn(ctx, "narrative generation failed", logger.Error(err))
		metrics.RecordErrorByComponent("llm", "narrate")
		a.Warnings = append(a.Warnings, "narrative unavailable")
		return
	}
	a.Narrative = n
}

// finish records run metrics and logs the outcome. It returns err unchanged.
func (s *Service) finish(ctx context.Context, r *run, a *Analysis, err error) error {
	elapsed := time.Since(r.start)
	s.runs.Add(1)
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	metrics.RecordAnalysisLatency(float64(elapsed.Milliseconds()))
	if err != nil {
		s.failures.Add(1)
		metrics.RecordAnalysis(outcome(err))
		r.log.Warn(ctx, "analysis failed", logger.Error(err), logger.Duration("elapsed", elapsed))
		return err
	}

	a.DurationMS = float64(elapsed.Microseconds()) / 1000
	metrics.RecordAnalysis("ok")
	metrics.RecordPrimaryPlaystyle(string(a.Report.PrimaryLabel))
	r.log.Info(ctx, "analysis complete",
		logger.String("primary", string(a.Report.PrimaryLabel)),
		logger.Int("titles", a.Titles),
		logger.Int("recommendations", len(a.Report.Recommendations)),
		logger.Int("warnings", len(a.Warnings)),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, catalog.ErrEmptyLibrary):
		return "empty_library"
	case errors.Is(err, steam.ErrInvalidProfile), errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, steam.ErrProfileNotFound):
		return "not_found"
	case errors.Is(err, steam.ErrPrivateProfile):
		return "private"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNotConfigured):
		return "unavailable"
	default:
		return "error"
	}
}

func (s *Service) limit(n int) int {
	if n == 0 {
		return s.recCount
	}
	return clampLimit(n)
}

func clampLimit(n int) int {
	switch {
	case n < minRecommendations:
		return minRecommendations
	case n > maxRecommendations:
		return maxRecommendations
	}
	return n
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":                s.runs.Load(),
		"failures":            s.failures.Load(),
		"topK":                s.topK,
		"recommendationCount": s.recCount,
		"profileLookups":      s.library != nil && s.source != nil,
		"narrative":           s.narrator != nil,
		"analysisTimeoutMs":   s.timeout.Milliseconds(),
		"immersiveThreshold":  s.thresholds.ImmersiveConcentration,
		"explorerThreshold":   s.thresholds.ExplorerBreadth,
	}
	if !s.lastRun.IsZero() {
		stats["lastRun"] = s.lastRun.UTC().Format(time.RFC3339)
	}
	return stats
}
