// Package queries contains the read use cases of the dispatch core. Reads run
// outside of a transaction; each handler checks the caller's capability
// before returning anything about an order.
package queries

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func authorize(authz ports.Authorizer, a actor.Actor, op actor.Operation, rels []actor.Relationship) error {
	if authz == nil || !authz.CanPerform(a, op, rels) {
		return errs.NewForbiddenError(string(op), "actor lacks the required role or relationship")
	}
	return nil
}

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

// orderFacts looks up the child-row relationships of a courier. Other actors
// cannot bid or participate, so nothing is loaded for them.
func orderFacts(ctx context.Context, uow ports.UnitOfWork, a actor.Actor, o *order.Order) (services.OrderFacts, error) {
	var facts services.OrderFacts
	if !a.IsCourier() {
		return facts, nil
	}

	id := a.ID()
	bids, err := uow.BidRepository().ListByOrder(ctx, o.ID(), &id)
	if err != nil {
		return facts, err
	}
	facts.IsBidder = len(bids) > 0

	if o.Type() == order.TypeCollaborative {
		participants, err := uow.ParticipantRepository().ListByOrder(ctx, o.ID())
		if err != nil {
			return facts, err
		}
		for _, p := range participants {
			if p.CourierID().IsEqual(id) {
				facts.IsParticipant = true
				break
			}
		}
	}
	return facts, nil
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}
