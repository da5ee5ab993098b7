package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateOrderCommandIsNotConstructed = errors.New(
	"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
)

// UpdateOrderCommand edits an order that nobody has been assigned to yet.
type UpdateOrderCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	patch   order.Patch

	guard guard.ConstructorGuard
}

func NewUpdateOrderCommand(a actor.Actor, orderID kernel.UUID, patch order.Patch) (UpdateOrderCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
	); err != nil {
		return UpdateOrderCommand{}, err
	}
	return UpdateOrderCommand{actor: a, orderID: orderID, patch: patch, guard: guard.NewConstructorGuard()}, nil
}

func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

func (c UpdateOrderCommand) Actor() actor.Actor { return c.actor }

func (c UpdateOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c UpdateOrderCommand) Patch() order.Patch { return c.patch }
