package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrListCouriersQueryIsNotConstructed = errors.New(
	"ListCouriersQuery must be created via NewListCouriersQuery constructor",
)

type ListCouriersQuery struct {
	actor      actor.Actor
	onlineOnly bool
	limit      int
	offset     int

	guard guard.ConstructorGuard
}

func NewListCouriersQuery(a actor.Actor, onlineOnly bool, limit, offset int) (ListCouriersQuery, error) {
	if err := a.Validate(); err != nil {
		return ListCouriersQuery{}, err
	}
	if offset < 0 {
		offset = 0
	}
	return ListCouriersQuery{
		actor:      a,
		onlineOnly: onlineOnly,
		limit:      pageSize(limit),
		offset:     offset,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q ListCouriersQuery) Validate() error {
	return q.guard.Validate(ErrListCouriersQueryIsNotConstructed)
}

// CourierView is the staff-facing read model of a courier profile.
type CourierView struct {
	ID         kernel.UUID
	Name       string
	Vehicle    string
	Online     bool
	Verified   bool
	Position   *kernel.GeoPoint
	LastSeenAt *time.Time
}
