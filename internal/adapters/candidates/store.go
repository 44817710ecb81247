package candidates

import (
	"context"
	"fmt"

	"github.com/okian/gametaste/internal/adapters/steam"
	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/logger"
)

const (
	defaultSearchLabels = 3
	defaultPoolSize     = 40
)

// Store is the part of the Steam client a StoreSource needs.
type Store interface {
	SearchStore(ctx context.Context, term string) ([]steam.SearchItem, error)
	Details(ctx context.Context, ids []int64, dc *steam.DetailsCache) ([]*steam.AppDetails, error)
}

// StoreOption configures a StoreSource.
type StoreOption func(*StoreSource)

// WithSearchLabels sets how many of the strongest labels are searched.
func WithSearchLabels(n int) StoreOption {
	return func(s *StoreSource) {
		if n > 0 {
			s.searchLabels = n
		}
	}
}

// WithPoolSize caps the number of candidates resolved per run.
func WithPoolSize(n int) StoreOption {
	return func(s *StoreSource) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l logger.Logger) StoreOption {
	return func(s *StoreSource) {
		if l != nil {
			s.log = l
		}
	}
}

// StoreSource builds candidates by searching the store for the user's
// strongest labels and resolving the hits' details.
type StoreSource struct {
	store        Store
	searchLabels int
	poolSize     int
	log          logger.Logger
}

var _ Source = (*StoreSource)(nil)

// NewStoreSource creates a StoreSource over store.
func NewStoreSource(store Store, opts ...StoreOption) *StoreSource {
	s := &StoreSource{
		store:        store,
		searchLabels: defaultSearchLabels,
		poolSize:     defaultPoolSize,
		log:          logger.GetOrNop().Named("candidates"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates searches each label in order, keeps unique app hits up to the
// pool size and resolves their details. Hits without details are skipped.
func (s *StoreSource) Candidates(ctx context.Context, req Request) ([]model.CandidateTitle, error) {
	if len(req.Labels) == 0 {
		return nil, ErrNoLabels
	}
	labels := req.Labels
	if len(labels) > s.searchLabels {
		labels = labels[:s.searchLabels]
	}

	seen := make(map[int64]struct{}, s.poolSize)
	ids := make([]int64, 0, s.poolSize)
	var lastErr error
	searched := 0
	for _, label := range labels {
		if len(ids) >= s.poolSize {
			break
		}
		items, err := s.store.SearchStore(ctx, label)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			s.log.Warn(ctx, "store search failed", logger.String("label", label), logger.Error(err))
			continue
		}
		searched++
		for _, it := range items {
			if it.Type != "" && it.Type != "app" {
				continue
			}
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			ids = append(ids, it.ID)
			if len(ids) >= s.poolSize {
				break
			}
		}
	}
	if searched == 0 && lastErr != nil {
		return nil, fmt.Errorf("store candidates: %w", lastErr)
	}

	details, err := s.store.Details(ctx, ids, req.Details)
	if err != nil {
		return nil, fmt.Errorf("store candidates: %w", err)
	}

	out := make([]model.CandidateTitle, 0, len(ids))
	for _, d := range details {
		if d == nil {
			continue
		}
		c := model.CandidateTitle{ID: d.AppID, Name: d.Name, Genres: d.Genres, Tags: d.Categories}
		if d.Price != nil {
			c.Price = &model.Price{
				Currency:        d.Price.Currency,
				Initial:         d.Price.Initial,
				Final:           d.Price.Final,
				DiscountPercent: d.Price.DiscountPercent,
			}
		}
		out = append(out, c)
	}
	s.log.Debug(ctx, "store candidates resolved",
		logger.Int("labels", len(labels)),
		logger.Int("hits", len(ids)),
		logger.Int("resolved", len(out)),
	)
	return out, nil
}
