package queries

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// GetOrderQueryHandler returns an order to its owner, its courier, staff,
// collaborators and bidders. Any courier may also read an order that is open
// for bidding.
type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
}

func NewGetOrderQueryHandler(uowFactory ports.UnitOfWorkFactory, authz ports.Authorizer) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory, authz: authz}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	facts, err := orderFacts(ctx, uow, query.Actor(), o)
	if err != nil {
		return nil, err
	}
	rels := services.Relationships(query.Actor(), o, facts)

	if o.Status() == order.Bidding && h.authz != nil && h.authz.CanPerform(query.Actor(), actor.OpOrderReadOpen, rels) {
		return o, nil
	}
	if err = authorize(h.authz, query.Actor(), actor.OpOrderRead, rels); err != nil {
		return nil, err
	}
	return o, nil
}
