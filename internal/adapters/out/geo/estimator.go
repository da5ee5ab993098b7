// Package geo estimates travel between two stops from their coordinates.
package geo

import (
	"context"
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrNoCoordinates is returned when a stop carries no coordinates.
var ErrNoCoordinates = errs.NewValueIsRequiredError("stop coordinates")

// Config tunes the estimate. RoadFactor stretches the great-circle distance
// to approximate street routing.
type Config struct {
	AverageSpeedKmh float64
	RoadFactor      float64
	HandlingMinutes int
}

// DefaultConfig matches an urban motorcycle courier.
func DefaultConfig() Config {
	return Config{
		AverageSpeedKmh: 25,
		RoadFactor:      1.3,
		HandlingMinutes: 5,
	}
}

// Estimator implements ports.GeoEstimator without any external routing
// service.
type Estimator struct {
	cfg Config
}

func NewEstimator(cfg Config) (*Estimator, error) {
	if cfg.AverageSpeedKmh <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("average speed", cfg.AverageSpeedKmh, "> 0", "unbounded")
	}
	if cfg.RoadFactor < 1 {
		return nil, errs.NewValueIsOutOfRangeError("road factor", cfg.RoadFactor, 1, "unbounded")
	}
	if cfg.HandlingMinutes < 0 {
		return nil, errs.NewValueIsOutOfRangeError("handling minutes", cfg.HandlingMinutes, 0, "unbounded")
	}
	return &Estimator{cfg: cfg}, nil
}

func (e *Estimator) DistanceAndDuration(ctx context.Context, from, to kernel.Address) (float64, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	a, b := from.Point(), to.Point()
	if a == nil || b == nil {
		return 0, 0, errors.Join(ErrNoCoordinates, errs.NewValueIsInvalidError("stop"))
	}

	km := round2(a.DistanceTo(*b) * e.cfg.RoadFactor)
	minutes := int(math.Ceil(km/e.cfg.AverageSpeedKmh*60)) + e.cfg.HandlingMinutes
	return km, minutes, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
