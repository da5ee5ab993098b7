package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterCourierCommandIsNotConstructed = errors.New(
	"RegisterCourierCommand must be created via NewRegisterCourierCommand constructor",
)

// RegisterCourierCommand creates the matching profile of a courier account.
//
// Example:
//
//	cmd, err := NewRegisterCourierCommand(staff, courierID, "Ana Rojas", order.VehicleMotorcycle, true)
//	if err != nil {
//	    return fmt.Errorf("invalid courier data: %w", err)
//	}
//	c, err := handler.Handle(ctx, cmd)
type RegisterCourierCommand struct {
	actor     actor.Actor
	courierID kernel.UUID
	name      string
	vehicle   order.VehicleClass
	verified  bool

	guard guard.ConstructorGuard
}

func NewRegisterCourierCommand(
	a actor.Actor,
	courierID kernel.UUID,
	name string,
	vehicle order.VehicleClass,
	verified bool,
) (RegisterCourierCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("courier id", courierID),
		vehicle.Validate(),
	); err != nil {
		return RegisterCourierCommand{}, err
	}
	return RegisterCourierCommand{
		actor:     a,
		courierID: courierID,
		name:      name,
		vehicle:   vehicle,
		verified:  verified,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterCourierCommand) Validate() error {
	return c.guard.Validate(ErrRegisterCourierCommandIsNotConstructed)
}

func (c RegisterCourierCommand) Actor() actor.Actor { return c.actor }

func (c RegisterCourierCommand) CourierID() kernel.UUID { return c.courierID }

func (c RegisterCourierCommand) Name() string { return c.name }

func (c RegisterCourierCommand) Vehicle() order.VehicleClass { return c.vehicle }

func (c RegisterCourierCommand) Verified() bool { return c.verified }
