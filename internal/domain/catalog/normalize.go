// Package catalog turns raw owned-title records into a strict, ordered library.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/logger"
	"github.com/okian/gametaste/pkg/metrics"
)

// Normalizer validates raw records and builds a model.Library.
// It holds no per-run state and is safe for concurrent use.
type Normalizer struct {
	topK     int
	log      logger.Logger
	validate *validator.Validate
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		topK:     DefaultTopK,
		log:      logger.GetOrNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TopK returns the configured library bound.
func (n *Normalizer) TopK() int { return n.topK }

// Normalize validates each record, drops unplayed ones, orders the rest by
// playtime (ties by ID) and keeps the first TopK. Bad records are collected in
// Library.Rejected and never abort the run. A repeated ID is rejected; the
// first occurrence wins.
func (n *Normalizer) Normalize(ctx context.Context, raw []model.RawTitle) (*model.Library, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStageLatency("normalize", float64(time.Since(start).Microseconds())/1000)
	}()

	if len(raw) == 0 {
		return nil, &EmptyLibraryError{}
	}

	lib := &model.Library{}
	seen := make(map[int64]struct{}, len(raw))
	titles := make([]model.OwnedTitle, 0, len(raw))

	for i, rec := range raw {
		if rec.Malformed != "" {
			n.reject(ctx, lib, &MalformedRecordError{Index: i, ID: rec.ID, Reason: rec.Malformed}, "decode")
			continue
		}
		if err := n.validate.Struct(rec); err != nil {
			n.reject(ctx, lib, &MalformedRecordError{Index: i, ID: rec.ID, Reason: describe(err)}, "invalid")
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			n.reject(ctx, lib, &MalformedRecordError{Index: i, ID: rec.ID, Reason: "duplicate id"}, "duplicate")
			continue
		}
		seen[rec.ID] = struct{}{}

		if rec.PlaytimeMinutes == 0 {
			lib.Dropped++
			continue
		}

		titles = append(titles, model.OwnedTitle{
			ID:              rec.ID,
			Name:            strings.TrimSpace(rec.Name),
			PlaytimeMinutes: rec.PlaytimeMinutes,
			RecentMinutes:   rec.RecentMinutes,
			Genres:          NormalizeLabels(rec.Genres),
			Tags:            NormalizeLabels(rec.Tags),
		})
	}
	metrics.RecordRecordsDropped(lib.Dropped)

	if len(titles) == 0 {
		return nil, &EmptyLibraryError{Total: len(raw), Dropped: lib.Dropped, Rejected: len(lib.Rejected)}
	}

	sort.Slice(titles, func(i, j int) bool {
		if titles[i].PlaytimeMinutes != titles[j].PlaytimeMinutes {
			return titles[i].PlaytimeMinutes > titles[j].PlaytimeMinutes
		}
		return titles[i].ID < titles[j].ID
	})
	if len(titles) > n.topK {
		titles = titles[:n.topK]
	}
	lib.Titles = titles

	metrics.RecordLibrarySize(len(titles))
	n.log.Debug(ctx, "library normalized",
		logger.Int("input", len(raw)),
		logger.Int("kept", len(titles)),
		logger.Int("dropped", lib.Dropped),
		logger.Int("rejected", len(lib.Rejected)),
	)
	return lib, nil
}

func (n *Normalizer) reject(ctx context.Context, lib *model.Library, err *MalformedRecordError, reason string) {
	lib.Rejected = append(lib.Rejected, err)
	metrics.RecordRecordRejected(reason)
	n.log.Warn(ctx, "skipping malformed record",
		logger.Int("index", err.Index),
		logger.Int64("id", err.ID),
		logger.String("reason", err.Reason),
	)
}

// NormalizeLabels trims labels, drops empty ones, de-duplicates and sorts.
// Matching is case-sensitive. The result is never nil.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
