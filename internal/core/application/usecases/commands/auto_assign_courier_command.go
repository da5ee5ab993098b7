package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAutoAssignCourierCommandIsNotConstructed = errors.New(
		"AutoAssignCourierCommand must be created via NewAutoAssignCourierCommand constructor",
	)
	ErrAssignPendingExpressCommandIsNotConstructed = errors.New(
		"AssignPendingExpressCommand must be created via NewAssignPendingExpressCommand constructor",
	)
)

// AutoAssignCourierCommand gives an order to the best matching courier
// without waiting for bids.
type AutoAssignCourierCommand struct {
	actor   actor.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAutoAssignCourierCommand(a actor.Actor, orderID kernel.UUID) (AutoAssignCourierCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
	); err != nil {
		return AutoAssignCourierCommand{}, err
	}
	return AutoAssignCourierCommand{actor: a, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AutoAssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAutoAssignCourierCommandIsNotConstructed)
}

func (c AutoAssignCourierCommand) Actor() actor.Actor { return c.actor }

func (c AutoAssignCourierCommand) OrderID() kernel.UUID { return c.orderID }

// AssignPendingExpressCommand runs auto-assignment over waiting express
// orders as the system actor.
type AssignPendingExpressCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewAssignPendingExpressCommand processes at most batchSize orders; values
// below one are raised to one.
func NewAssignPendingExpressCommand(batchSize int) AssignPendingExpressCommand {
	return AssignPendingExpressCommand{batchSize: max(batchSize, 1), guard: guard.NewConstructorGuard()}
}

func (c AssignPendingExpressCommand) Validate() error {
	return c.guard.Validate(ErrAssignPendingExpressCommandIsNotConstructed)
}

func (c AssignPendingExpressCommand) BatchSize() int { return c.batchSize }
