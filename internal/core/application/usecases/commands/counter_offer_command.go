package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateCounterOfferCommandIsNotConstructed = errors.New(
		"CreateCounterOfferCommand must be created via NewCreateCounterOfferCommand constructor",
	)
	ErrResolveCounterOfferCommandIsNotConstructed = errors.New(
		"ResolveCounterOfferCommand must be created via NewResolveCounterOfferCommand constructor",
	)
)

// CreateCounterOfferCommand proposes a different price on a pending bid.
type CreateCounterOfferCommand struct {
	actor     actor.Actor
	orderID   kernel.UUID
	bidID     kernel.UUID
	counterID kernel.UUID
	price     kernel.Money
	message   string

	guard guard.ConstructorGuard
}

func NewCreateCounterOfferCommand(
	a actor.Actor,
	orderID, bidID, counterID kernel.UUID,
	price kernel.Money,
	message string,
) (CreateCounterOfferCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("bid id", bidID),
		requireID("counter offer id", counterID),
	); err != nil {
		return CreateCounterOfferCommand{}, err
	}
	return CreateCounterOfferCommand{
		actor:     a,
		orderID:   orderID,
		bidID:     bidID,
		counterID: counterID,
		price:     price,
		message:   message,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreateCounterOfferCommand) Validate() error {
	return c.guard.Validate(ErrCreateCounterOfferCommandIsNotConstructed)
}

func (c CreateCounterOfferCommand) Actor() actor.Actor { return c.actor }

func (c CreateCounterOfferCommand) OrderID() kernel.UUID { return c.orderID }

func (c CreateCounterOfferCommand) BidID() kernel.UUID { return c.bidID }

func (c CreateCounterOfferCommand) CounterID() kernel.UUID { return c.counterID }

func (c CreateCounterOfferCommand) Price() kernel.Money { return c.price }

func (c CreateCounterOfferCommand) Message() string { return c.message }

// ResolveCounterOfferCommand is the bidding courier's answer to a counter
// offer.
type ResolveCounterOfferCommand struct {
	actor     actor.Actor
	orderID   kernel.UUID
	counterID kernel.UUID
	accept    bool

	guard guard.ConstructorGuard
}

func NewResolveCounterOfferCommand(a actor.Actor, orderID, counterID kernel.UUID, accept bool) (ResolveCounterOfferCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("counter offer id", counterID),
	); err != nil {
		return ResolveCounterOfferCommand{}, err
	}
	return ResolveCounterOfferCommand{
		actor:     a,
		orderID:   orderID,
		counterID: counterID,
		accept:    accept,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ResolveCounterOfferCommand) Validate() error {
	return c.guard.Validate(ErrResolveCounterOfferCommandIsNotConstructed)
}

func (c ResolveCounterOfferCommand) Actor() actor.Actor { return c.actor }

func (c ResolveCounterOfferCommand) OrderID() kernel.UUID { return c.orderID }

func (c ResolveCounterOfferCommand) CounterID() kernel.UUID { return c.counterID }

func (c ResolveCounterOfferCommand) Accept() bool { return c.accept }
