package services

import (
	"errors"
	"math"
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ScoreWeights are the composite weights of the four scoring terms.
type ScoreWeights struct {
	Distance   float64
	Rating     float64
	Completion float64
	Activity   float64
}

// MatchingConfig tunes courier ranking.
type MatchingConfig struct {
	RadiusKm      float64
	Limit         int
	DefaultRating float64
	MinutesPerKm  float64
	Weights       ScoreWeights
}

// DefaultMatchingConfig returns the stock weights: 10 km radius, top 5,
// rating 3.0 for couriers without ratings, 3 minutes per km.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		RadiusKm:      10,
		Limit:         5,
		DefaultRating: 3.0,
		MinutesPerKm:  3,
		Weights: ScoreWeights{
			Distance:   0.3,
			Rating:     0.3,
			Completion: 0.25,
			Activity:   0.15,
		},
	}
}

func (c MatchingConfig) Validate() error {
	w := c.Weights
	return errors.Join(
		positive("matching radius", c.RadiusKm),
		positive("matching limit", float64(c.Limit)),
		positive("minutes per km", c.MinutesPerKm),
		inRange("default rating", c.DefaultRating, 0, 5),
		inRange("distance weight", w.Distance, 0, 1),
		inRange("rating weight", w.Rating, 0, 1),
		inRange("completion weight", w.Completion, 0, 1),
		inRange("activity weight", w.Activity, 0, 1),
	)
}

// Candidate is a courier together with what scoring needs to know about it.
// A nil Rating means the courier has not been rated yet.
type Candidate struct {
	Courier *courier.Courier
	Stats   courier.Stats
	Rating  *float64
}

// RankedCourier is one suggestion returned by FindBest.
type RankedCourier struct {
	CourierID  kernel.UUID
	Name       string
	Vehicle    order.VehicleClass
	DistanceKm float64
	ETAMinutes float64
	Rating     float64
	Score      float64
}

// Matcher ranks couriers for an order with a weighted, explainable score.
type Matcher struct {
	cfg MatchingConfig
}

func NewMatcher(cfg MatchingConfig) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg}, nil
}

func (m *Matcher) Config() MatchingConfig { return m.cfg }

// Score combines proximity, rating, completion rate and recent activity.
// The result is rounded to two decimals.
func (m *Matcher) Score(distanceKm, rating float64, stats courier.Stats) float64 {
	w := m.cfg.Weights
	distanceTerm := math.Max(0, 10-distanceKm)
	ratingTerm := rating * 2
	completionTerm := stats.CompletionRate() * 5
	activityTerm := math.Min(float64(stats.Recent7d)*0.5, 3)

	score := w.Distance*distanceTerm +
		w.Rating*ratingTerm +
		w.Completion*completionTerm +
		w.Activity*activityTerm
	return round2(score)
}

// FindBest returns up to limit matchable couriers within maxKm of the
// order's pickup, best first. Equal scores keep candidate order. A zero
// maxKm or limit falls back to the configured value. Orders whose pickup has
// no coordinates match nobody.
func (m *Matcher) FindBest(o *order.Order, candidates []Candidate, maxKm float64, limit int) []RankedCourier {
	pickup := o.Pickup().Point()
	if pickup == nil {
		return nil
	}
	if maxKm <= 0 {
		maxKm = m.cfg.RadiusKm
	}
	if limit <= 0 {
		limit = m.cfg.Limit
	}
	required := o.Package().Vehicle()

	ranked := make([]RankedCourier, 0, len(candidates))
	for _, c := range candidates {
		if c.Courier == nil || !c.Courier.IsMatchable() || !c.Courier.CanCarry(required) {
			continue
		}
		distance := c.Courier.Position().DistanceTo(*pickup)
		if distance > maxKm {
			continue
		}
		rating := m.cfg.DefaultRating
		if c.Rating != nil {
			rating = *c.Rating
		}
		ranked = append(ranked, RankedCourier{
			CourierID:  c.Courier.ID(),
			Name:       c.Courier.Name(),
			Vehicle:    c.Courier.Vehicle(),
			DistanceKm: round2(distance),
			ETAMinutes: round2(distance * m.cfg.MinutesPerKm),
			Rating:     rating,
			Score:      m.Score(distance, rating, c.Stats),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Best returns the single top candidate, if any.
func (m *Matcher) Best(o *order.Order, candidates []Candidate) (RankedCourier, bool) {
	ranked := m.FindBest(o, candidates, 0, 1)
	if len(ranked) == 0 {
		return RankedCourier{}, false
	}
	return ranked[0], true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func positive(name string, v float64) error {
	if v <= 0 {
		return errs.NewValueIsOutOfRangeError(name, v, "> 0", "unbounded")
	}
	return nil
}

func inRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return errs.NewValueIsOutOfRangeError(name, v, lo, hi)
	}
	return nil
}
