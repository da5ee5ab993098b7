package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrFindBestCouriersQueryIsNotConstructed = errors.New(
	"FindBestCouriersQuery must be created via NewFindBestCouriersQuery constructor",
)

// FindBestCouriersQuery ranks available couriers for an order. Zero radius
// or limit means the configured default.
type FindBestCouriersQuery struct {
	actor    actor.Actor
	orderID  kernel.UUID
	radiusKm float64
	limit    int

	guard guard.ConstructorGuard
}

func NewFindBestCouriersQuery(a actor.Actor, orderID kernel.UUID, radiusKm float64, limit int) (FindBestCouriersQuery, error) {
	var radiusErr, limitErr error
	if radiusKm < 0 {
		radiusErr = errs.NewValueIsOutOfRangeError("max_km", radiusKm, 0, "unbounded")
	}
	if limit < 0 {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 0, "unbounded")
	}
	if err := errors.Join(a.Validate(), requireID("order id", orderID), radiusErr, limitErr); err != nil {
		return FindBestCouriersQuery{}, err
	}
	return FindBestCouriersQuery{
		actor:    a,
		orderID:  orderID,
		radiusKm: radiusKm,
		limit:    limit,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q FindBestCouriersQuery) Validate() error {
	return q.guard.Validate(ErrFindBestCouriersQueryIsNotConstructed)
}

func (q FindBestCouriersQuery) Actor() actor.Actor { return q.actor }

func (q FindBestCouriersQuery) OrderID() kernel.UUID { return q.orderID }

func (q FindBestCouriersQuery) RadiusKm() float64 { return q.radiusKm }

func (q FindBestCouriersQuery) Limit() int { return q.limit }
