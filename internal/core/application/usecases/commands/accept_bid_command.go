package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptBidCommandIsNotConstructed = errors.New(
	"AcceptBidCommand must be created via NewAcceptBidCommand constructor",
)

// AcceptBidCommand picks the winning bid of an order.
type AcceptBidCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	bidID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptBidCommand(a actor.Actor, orderID, bidID kernel.UUID) (AcceptBidCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("bid id", bidID),
	); err != nil {
		return AcceptBidCommand{}, err
	}
	return AcceptBidCommand{actor: a, orderID: orderID, bidID: bidID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptBidCommand) Validate() error {
	return c.guard.Validate(ErrAcceptBidCommandIsNotConstructed)
}

func (c AcceptBidCommand) Actor() actor.Actor { return c.actor }

func (c AcceptBidCommand) OrderID() kernel.UUID { return c.orderID }

func (c AcceptBidCommand) BidID() kernel.UUID { return c.bidID }
