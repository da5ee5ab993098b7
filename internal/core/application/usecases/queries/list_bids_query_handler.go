package queries

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// ListBidsQueryHandler shows the owner and staff every bid of an order and a
// courier only the bids that courier placed.
type ListBidsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
}

func NewListBidsQueryHandler(uowFactory ports.UnitOfWorkFactory, authz ports.Authorizer) ListBidsQueryHandler {
	return ListBidsQueryHandler{uowFactory: uowFactory, authz: authz}
}

func (h ListBidsQueryHandler) Handle(ctx context.Context, query OrderScopedQuery) ([]*bid.Bid, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	a := query.Actor()
	rels := services.Relationships(a, o, services.OrderFacts{})

	if h.authz != nil && h.authz.CanPerform(a, actor.OpBidListAll, rels) {
		return uow.BidRepository().ListByOrder(ctx, o.ID(), nil)
	}
	if err = authorize(h.authz, a, actor.OpBidListOwn, rels); err != nil {
		return nil, err
	}
	id := a.ID()
	return uow.BidRepository().ListByOrder(ctx, o.ID(), &id)
}
