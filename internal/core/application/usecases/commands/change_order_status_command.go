package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand drives an order's status machine towards target.
type ChangeOrderStatusCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	target  order.Status
	reason  string

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand builds the command. reason is only used when
// target is cancelled.
func NewChangeOrderStatusCommand(a actor.Actor, orderID kernel.UUID, target order.Status, reason string) (ChangeOrderStatusCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		target.Validate(),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	return ChangeOrderStatusCommand{
		actor:   a,
		orderID: orderID,
		target:  target,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) Actor() actor.Actor { return c.actor }

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }

func (c ChangeOrderStatusCommand) Target() order.Status { return c.target }

func (c ChangeOrderStatusCommand) Reason() string { return c.reason }
