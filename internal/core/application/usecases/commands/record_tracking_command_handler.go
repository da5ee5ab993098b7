package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// RecordTrackingCommandHandler stores a tracking point and refreshes the
// courier's last known position in the same transaction.
type RecordTrackingCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewRecordTrackingCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) RecordTrackingCommandHandler {
	return RecordTrackingCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

func (h RecordTrackingCommandHandler) Handle(ctx context.Context, cmd RecordTrackingCommand) (order.TrackingPoint, error) {
	if err := cmd.Validate(); err != nil {
		return order.TrackingPoint{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.TrackingPoint{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return order.TrackingPoint{}, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpTrackingRecord, rels); err != nil {
		return order.TrackingPoint{}, err
	}

	now := h.clock.Now()
	point, err := o.Track(cmd.PointID(), cmd.Actor().ID(), cmd.Point(), now)
	if err != nil {
		return order.TrackingPoint{}, err
	}
	if err = uow.OrderRepository().AddTrackingPoint(ctx, point); err != nil {
		return order.TrackingPoint{}, err
	}

	courierRepo := uow.CourierRepository()
	c, err := courierRepo.Get(ctx, point.CourierID)
	switch {
	case err == nil:
		c.ReportPosition(point.Point, now)
		if err = courierRepo.Update(ctx, c); err != nil {
			return order.TrackingPoint{}, err
		}
	case isNotFound(err):
		h.logger.Debugw("tracking_without_courier_profile", "courier_id", point.CourierID.String())
	default:
		return order.TrackingPoint{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.TrackingPoint{}, err
	}
	return point, nil
}
