package queries

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ListOrdersQueryHandler scopes the listing by role: staff see everything,
// couriers see their assignments plus orders open for bidding, and posters
// see their own orders.
type ListOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{uowFactory: uowFactory}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := ports.OrderFilter{
		Status: query.Status(),
		Type:   query.Type(),
		Limit:  query.Limit(),
		Offset: query.Offset(),
	}

	a := query.Actor()
	id := a.ID()
	switch {
	case a.IsPrivileged():
	case a.IsCourier():
		filter.Scope = ports.OrderScope{CourierID: &id, IncludeOpen: true}
	default:
		filter.Scope = ports.OrderScope{ClientID: &id}
	}

	return h.uowFactory.Create().OrderRepository().List(ctx, filter)
}
