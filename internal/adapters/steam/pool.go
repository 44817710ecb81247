package steam

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gametaste/internal/adapters/cache"
	"github.com/okian/gametaste/pkg/logger"
	"github.com/okian/gametaste/pkg/metrics"
)

// DetailsCache is the run-scoped store lookup cache.
type DetailsCache = cache.Cache[int64, *AppDetails]

// NewDetailsCache creates a cache for one analysis run.
func NewDetailsCache(opts ...cache.Option) *DetailsCache {
	return cache.New[int64, *AppDetails](opts...)
}

// Details resolves app details for ids with at most Concurrency lookups in
// flight, all paced by the shared limiter. The result is index-aligned with
// ids; a failed lookup leaves a nil entry and is logged. Only cancellation of
// ctx aborts the batch. dc may be nil.
func (c *Client) Details(ctx context.Context, ids []int64, dc *DetailsCache) ([]*AppDetails, error) {
	out := make([]*AppDetails, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			metrics.IncFetchInFlight()
			defer metrics.DecFetchInFlight()

			load := func(ctx context.Context) (*AppDetails, error) { return c.AppDetails(ctx, id) }
			var (
				d   *AppDetails
				err error
			)
			if dc != nil {
				d, err = dc.GetOrLoad(gctx, id, load)
			} else {
				d, err = load(gctx)
			}

			switch {
			case err == nil:
				out[i] = d
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || gctx.Err() != nil:
				return err
			default:
				metrics.RecordErrorByComponent("steam", "app_details")
				c.log.Warn(gctx, "app details lookup failed",
					logger.Int64("appid", id),
					logger.Error(err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
