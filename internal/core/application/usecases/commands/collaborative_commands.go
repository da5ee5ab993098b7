package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrJoinCollaborativeCommandIsNotConstructed = errors.New(
		"JoinCollaborativeCommand must be created via NewJoinCollaborativeCommand constructor",
	)
	ErrUpdateParticipantCommandIsNotConstructed = errors.New(
		"UpdateParticipantCommand must be created via NewUpdateParticipantCommand constructor",
	)
	ErrDistributeEarningsCommandIsNotConstructed = errors.New(
		"DistributeEarningsCommand must be created via NewDistributeEarningsCommand constructor",
	)
)

// JoinCollaborativeCommand adds a courier to a collaborative order. Couriers
// join as themselves; privileged actors must name the courier.
type JoinCollaborativeCommand struct {
	actor         actor.Actor
	orderID       kernel.UUID
	participantID kernel.UUID
	courierID     *kernel.UUID
	role          collab.Role
	share         decimal.Decimal

	guard guard.ConstructorGuard
}

func NewJoinCollaborativeCommand(
	a actor.Actor,
	orderID, participantID kernel.UUID,
	courierID *kernel.UUID,
	role collab.Role,
	share decimal.Decimal,
) (JoinCollaborativeCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("participant id", participantID),
		collab.ValidateShare(share),
	); err != nil {
		return JoinCollaborativeCommand{}, err
	}
	if courierID != nil {
		if err := requireID("courier id", *courierID); err != nil {
			return JoinCollaborativeCommand{}, err
		}
	}
	return JoinCollaborativeCommand{
		actor:         a,
		orderID:       orderID,
		participantID: participantID,
		courierID:     courierID,
		role:          role,
		share:         share,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c JoinCollaborativeCommand) Validate() error {
	return c.guard.Validate(ErrJoinCollaborativeCommandIsNotConstructed)
}

func (c JoinCollaborativeCommand) Actor() actor.Actor { return c.actor }

func (c JoinCollaborativeCommand) OrderID() kernel.UUID { return c.orderID }

func (c JoinCollaborativeCommand) ParticipantID() kernel.UUID { return c.participantID }

func (c JoinCollaborativeCommand) Role() collab.Role { return c.role }

func (c JoinCollaborativeCommand) Share() decimal.Decimal { return c.share }

// CourierID resolves who joins: the caller when it is a courier, otherwise
// the explicitly named courier.
func (c JoinCollaborativeCommand) CourierID() (kernel.UUID, error) {
	if c.actor.IsCourier() {
		return c.actor.ID(), nil
	}
	if c.courierID == nil {
		return kernel.UUID{}, errs.NewValueIsRequiredError("courier id")
	}
	return *c.courierID, nil
}

// UpdateParticipantCommand changes a participant's status, share, or both.
type UpdateParticipantCommand struct {
	actor         actor.Actor
	orderID       kernel.UUID
	participantID kernel.UUID
	status        *collab.Status
	share         *decimal.Decimal

	guard guard.ConstructorGuard
}

func NewUpdateParticipantCommand(
	a actor.Actor,
	orderID, participantID kernel.UUID,
	status *collab.Status,
	share *decimal.Decimal,
) (UpdateParticipantCommand, error) {
	var changeErr, shareErr error
	if status == nil && share == nil {
		changeErr = errs.NewValueIsRequiredError("status or share")
	}
	if share != nil {
		shareErr = collab.ValidateShare(*share)
	}
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("participant id", participantID),
		changeErr,
		shareErr,
	); err != nil {
		return UpdateParticipantCommand{}, err
	}
	return UpdateParticipantCommand{
		actor:         a,
		orderID:       orderID,
		participantID: participantID,
		status:        status,
		share:         share,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateParticipantCommand) Validate() error {
	return c.guard.Validate(ErrUpdateParticipantCommandIsNotConstructed)
}

func (c UpdateParticipantCommand) Actor() actor.Actor { return c.actor }

func (c UpdateParticipantCommand) OrderID() kernel.UUID { return c.orderID }

func (c UpdateParticipantCommand) ParticipantID() kernel.UUID { return c.participantID }

func (c UpdateParticipantCommand) Status() *collab.Status { return c.status }

func (c UpdateParticipantCommand) Share() *decimal.Decimal { return c.share }

// DistributeEarningsCommand pays out a completed collaborative order.
type DistributeEarningsCommand struct {
	actor   actor.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewDistributeEarningsCommand(a actor.Actor, orderID kernel.UUID) (DistributeEarningsCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
	); err != nil {
		return DistributeEarningsCommand{}, err
	}
	return DistributeEarningsCommand{actor: a, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c DistributeEarningsCommand) Validate() error {
	return c.guard.Validate(ErrDistributeEarningsCommandIsNotConstructed)
}

func (c DistributeEarningsCommand) Actor() actor.Actor { return c.actor }

func (c DistributeEarningsCommand) OrderID() kernel.UUID { return c.orderID }
