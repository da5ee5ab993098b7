package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrPlaceBidCommandIsNotConstructed = errors.New(
	"PlaceBidCommand must be created via NewPlaceBidCommand constructor",
)

// PlaceBidCommand is a courier's price offer on an open order.
type PlaceBidCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	bidID   kernel.UUID
	price   kernel.Money
	times   bid.Times

	guard guard.ConstructorGuard
}

func NewPlaceBidCommand(a actor.Actor, orderID, bidID kernel.UUID, price kernel.Money, times bid.Times) (PlaceBidCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("bid id", bidID),
	); err != nil {
		return PlaceBidCommand{}, err
	}
	return PlaceBidCommand{
		actor:   a,
		orderID: orderID,
		bidID:   bidID,
		price:   price,
		times:   times,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PlaceBidCommand) Validate() error {
	return c.guard.Validate(ErrPlaceBidCommandIsNotConstructed)
}

func (c PlaceBidCommand) Actor() actor.Actor { return c.actor }

func (c PlaceBidCommand) OrderID() kernel.UUID { return c.orderID }

func (c PlaceBidCommand) BidID() kernel.UUID { return c.bidID }

func (c PlaceBidCommand) Price() kernel.Money { return c.price }

func (c PlaceBidCommand) Times() bid.Times { return c.times }
