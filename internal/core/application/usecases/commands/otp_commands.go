package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGenerateOTPCommandIsNotConstructed = errors.New(
		"GenerateOTPCommand must be created via NewGenerateOTPCommand constructor",
	)
	ErrVerifyOTPCommandIsNotConstructed = errors.New(
		"VerifyOTPCommand must be created via NewVerifyOTPCommand constructor",
	)
	ErrRecordFallbackCommandIsNotConstructed = errors.New(
		"RecordFallbackCommand must be created via NewRecordFallbackCommand constructor",
	)
)

// GenerateOTPCommand issues or re-sends the delivery code of an order.
type GenerateOTPCommand struct {
	actor   actor.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGenerateOTPCommand(a actor.Actor, orderID kernel.UUID) (GenerateOTPCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
	); err != nil {
		return GenerateOTPCommand{}, err
	}
	return GenerateOTPCommand{actor: a, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c GenerateOTPCommand) Validate() error {
	return c.guard.Validate(ErrGenerateOTPCommandIsNotConstructed)
}

func (c GenerateOTPCommand) Actor() actor.Actor { return c.actor }

func (c GenerateOTPCommand) OrderID() kernel.UUID { return c.orderID }

// VerifyOTPCommand submits the code the recipient read out to the courier.
type VerifyOTPCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	code    string

	guard guard.ConstructorGuard
}

func NewVerifyOTPCommand(a actor.Actor, orderID kernel.UUID, code string) (VerifyOTPCommand, error) {
	code = strings.TrimSpace(code)
	var codeErr error
	if code == "" {
		codeErr = errs.NewValueIsRequiredError("code")
	}
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		codeErr,
	); err != nil {
		return VerifyOTPCommand{}, err
	}
	return VerifyOTPCommand{actor: a, orderID: orderID, code: code, guard: guard.NewConstructorGuard()}, nil
}

func (c VerifyOTPCommand) Validate() error {
	return c.guard.Validate(ErrVerifyOTPCommandIsNotConstructed)
}

func (c VerifyOTPCommand) Actor() actor.Actor { return c.actor }

func (c VerifyOTPCommand) OrderID() kernel.UUID { return c.orderID }

func (c VerifyOTPCommand) Code() string { return c.code }

// RecordFallbackCommand confirms a handoff with a signature or a photo.
type RecordFallbackCommand struct {
	actor      actor.Actor
	orderID    kernel.UUID
	kind       order.Channel
	payloadRef string

	guard guard.ConstructorGuard
}

func NewRecordFallbackCommand(a actor.Actor, orderID kernel.UUID, kind order.Channel, payloadRef string) (RecordFallbackCommand, error) {
	var kindErr error
	if !kind.IsFallback() {
		kindErr = errs.NewValueIsInvalidError("proof kind")
	}
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		kindErr,
	); err != nil {
		return RecordFallbackCommand{}, err
	}
	return RecordFallbackCommand{
		actor:      a,
		orderID:    orderID,
		kind:       kind,
		payloadRef: payloadRef,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RecordFallbackCommand) Validate() error {
	return c.guard.Validate(ErrRecordFallbackCommandIsNotConstructed)
}

func (c RecordFallbackCommand) Actor() actor.Actor { return c.actor }

func (c RecordFallbackCommand) OrderID() kernel.UUID { return c.orderID }

func (c RecordFallbackCommand) Kind() order.Channel { return c.kind }

func (c RecordFallbackCommand) PayloadRef() string { return c.payloadRef }
