package remote

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
)

type ratingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Ratings implements ports.RatingService. Unknown couriers are unrated.
type Ratings struct {
	c *client
}

func NewRatings(cfg Config) (*Ratings, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Ratings{c: c}, nil
}

func (r *Ratings) AverageFor(ctx context.Context, courierID kernel.UUID) (float64, bool, error) {
	var resp ratingResponse
	err := r.c.getJSON(ctx, "/couriers/"+courierID.String()+"/rating", &resp)
	if errors.Is(err, errNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if resp.Count == 0 {
		return 0, false, nil
	}
	if resp.Average < 0 || resp.Average > 5 {
		return 0, false, fmt.Errorf("%w: rating %.2f outside [0, 5]", ErrResponseInvalid, resp.Average)
	}
	return resp.Average, true, nil
}
