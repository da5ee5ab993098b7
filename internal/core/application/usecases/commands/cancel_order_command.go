package commands

import (
	"errors"
	"strings"
	"unicode/utf8"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const maxCancelReasonLength = 500

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand withdraws an order before it is delivered.
type CancelOrderCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(a actor.Actor, orderID kernel.UUID, reason string) (CancelOrderCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if n := utf8.RuneCountInString(reason); n > maxCancelReasonLength {
		reasonErr = errs.NewValueIsOutOfRangeError("cancel reason length", n, 0, maxCancelReasonLength)
	}
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		reasonErr,
	); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{actor: a, orderID: orderID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Actor() actor.Actor { return c.actor }

func (c CancelOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c CancelOrderCommand) Reason() string { return c.reason }
