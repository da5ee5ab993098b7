package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierPresenceCommandIsNotConstructed = errors.New(
	"UpdateCourierPresenceCommand must be created via NewUpdateCourierPresenceCommand constructor",
)

// UpdateCourierPresenceCommand toggles a courier's availability and
// optionally reports where the courier is.
type UpdateCourierPresenceCommand struct {
	actor    actor.Actor
	online   bool
	position *kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewUpdateCourierPresenceCommand(a actor.Actor, online bool, position *kernel.GeoPoint) (UpdateCourierPresenceCommand, error) {
	if err := requireActor(a); err != nil {
		return UpdateCourierPresenceCommand{}, err
	}
	return UpdateCourierPresenceCommand{
		actor:    a,
		online:   online,
		position: position,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierPresenceCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierPresenceCommandIsNotConstructed)
}

func (c UpdateCourierPresenceCommand) Actor() actor.Actor { return c.actor }

func (c UpdateCourierPresenceCommand) Online() bool { return c.online }

func (c UpdateCourierPresenceCommand) Position() *kernel.GeoPoint { return c.position }
