package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrOrderScopedQueryIsNotConstructed = errors.New(
	"OrderScopedQuery must be created via NewOrderScopedQuery constructor",
)

// OrderScopedQuery is the input of every read that is about the children of
// one order: bids, participants, earnings and tracking.
type OrderScopedQuery struct {
	actor   actor.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewOrderScopedQuery(a actor.Actor, orderID kernel.UUID) (OrderScopedQuery, error) {
	if err := errors.Join(a.Validate(), requireID("order id", orderID)); err != nil {
		return OrderScopedQuery{}, err
	}
	return OrderScopedQuery{actor: a, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q OrderScopedQuery) Validate() error {
	return q.guard.Validate(ErrOrderScopedQueryIsNotConstructed)
}

func (q OrderScopedQuery) Actor() actor.Actor { return q.actor }

func (q OrderScopedQuery) OrderID() kernel.UUID { return q.orderID }
