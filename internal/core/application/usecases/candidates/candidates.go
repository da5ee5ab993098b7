// Package candidates assembles matching input: every matchable courier with
// its delivery history and rating.
package candidates

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

const recentWindow = 7 * 24 * time.Hour

// Loader reads candidates for the matcher.
type Loader struct {
	ratings ports.RatingService
	logger  *zap.SugaredLogger
}

func NewLoader(ratings ports.RatingService, logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{ratings: ratings, logger: logger}
}

// Load returns matchable couriers with stats counted from orders and
// ratings from the rating service. A rating lookup failure leaves that
// courier on the default rating.
func (l *Loader) Load(ctx context.Context, repo ports.CourierRepository, now time.Time) ([]services.Candidate, error) {
	couriers, err := repo.ListMatchable(ctx)
	if err != nil {
		return nil, err
	}
	if len(couriers) == 0 {
		return nil, nil
	}

	ids := make([]kernel.UUID, 0, len(couriers))
	for _, c := range couriers {
		ids = append(ids, c.ID())
	}
	stats, err := repo.Stats(ctx, ids, now.Add(-recentWindow))
	if err != nil {
		return nil, err
	}

	out := make([]services.Candidate, 0, len(couriers))
	for _, c := range couriers {
		cand := services.Candidate{Courier: c, Stats: stats[c.ID()]}
		if l.ratings != nil {
			avg, ok, rerr := l.ratings.AverageFor(ctx, c.ID())
			switch {
			case rerr != nil:
				l.logger.Warnw("rating_lookup_failed", "courier_id", c.ID().String(), "error", rerr)
			case ok:
				cand.Rating = &avg
			}
		}
		out = append(out, cand)
	}
	return out, nil
}
