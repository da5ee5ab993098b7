package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand posts a new delivery request on behalf of a client.
//
//	draft := order.Draft{Pickup: pickup, Delivery: dropoff, Package: pkg, ProposedPrice: price}
//	cmd, err := NewCreateOrderCommand(caller, kernel.NewUUID(), draft)
type CreateOrderCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	draft   order.Draft

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(a actor.Actor, orderID kernel.UUID, draft order.Draft) (CreateOrderCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
	); err != nil {
		return CreateOrderCommand{}, err
	}
	return CreateOrderCommand{
		actor:   a,
		orderID: orderID,
		draft:   draft,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() actor.Actor { return c.actor }

func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c CreateOrderCommand) Draft() order.Draft { return c.draft }
