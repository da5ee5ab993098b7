package queries

import (
	"context"

	"dispatch/internal/core/application/usecases/candidates"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// FindBestCouriersQueryHandler scores matchable couriers against the pickup
// of an order. It never changes the order.
type FindBestCouriersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
	matcher    *services.Matcher
	loader     *candidates.Loader
	clock      ports.Clock
}

func NewFindBestCouriersQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	authz ports.Authorizer,
	matcher *services.Matcher,
	loader *candidates.Loader,
	clock ports.Clock,
) FindBestCouriersQueryHandler {
	return FindBestCouriersQueryHandler{
		uowFactory: uowFactory,
		authz:      authz,
		matcher:    matcher,
		loader:     loader,
		clock:      clock,
	}
}

func (h FindBestCouriersQueryHandler) Handle(ctx context.Context, query FindBestCouriersQuery) ([]services.RankedCourier, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(h.authz, query.Actor(), actor.OpMatchFind, services.Relationships(query.Actor(), o, services.OrderFacts{})); err != nil {
		return nil, err
	}

	pool, err := h.loader.Load(ctx, uow.CourierRepository(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	return h.matcher.FindBest(o, pool, query.RadiusKm(), query.Limit()), nil
}
