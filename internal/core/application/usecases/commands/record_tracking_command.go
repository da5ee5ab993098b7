package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRecordTrackingCommandIsNotConstructed = errors.New(
	"RecordTrackingCommand must be created via NewRecordTrackingCommand constructor",
)

// RecordTrackingCommand is one position sample sent by the courier in transit.
type RecordTrackingCommand struct {
	actor   actor.Actor
	orderID kernel.UUID
	pointID kernel.UUID
	point   kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewRecordTrackingCommand(a actor.Actor, orderID, pointID kernel.UUID, point kernel.GeoPoint) (RecordTrackingCommand, error) {
	if err := errors.Join(
		requireActor(a),
		requireID("order id", orderID),
		requireID("tracking point id", pointID),
	); err != nil {
		return RecordTrackingCommand{}, err
	}
	return RecordTrackingCommand{
		actor:   a,
		orderID: orderID,
		pointID: pointID,
		point:   point,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RecordTrackingCommand) Validate() error {
	return c.guard.Validate(ErrRecordTrackingCommandIsNotConstructed)
}

func (c RecordTrackingCommand) Actor() actor.Actor { return c.actor }

func (c RecordTrackingCommand) OrderID() kernel.UUID { return c.orderID }

func (c RecordTrackingCommand) PointID() kernel.UUID { return c.pointID }

func (c RecordTrackingCommand) Point() kernel.GeoPoint { return c.point }
