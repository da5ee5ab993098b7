package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// CreateOrderCommandHandler validates and stores a new order, then tells
// nearby online couriers about it.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	geo        ports.GeoEstimator
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	radiusKm   float64
	logger     *zap.SugaredLogger
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	geo ports.GeoEstimator,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	radiusKm float64,
	logger *zap.SugaredLogger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		geo:        geo,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		radiusKm:   radiusKm,
		logger:     nopLogger(logger),
	}
}

// Handle creates the order in the initial status of its type. Standard and
// collaborative orders open for bids at once, express orders wait for
// auto-assignment. An estimator failure leaves the estimate empty.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := authorize(h.authz, cmd.Actor(), actor.OpOrderCreate, services.ActorRelationships(cmd.Actor())); err != nil {
		return nil, err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Actor().ID(), cmd.Draft(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	estimate(ctx, h.geo, o, h.logger)

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("order_created",
		"order_id", o.ID().String(),
		"client_id", o.ClientID().String(),
		"type", string(o.Type()),
		"status", o.Status().String(),
	)
	h.announce(ctx, uow.CourierRepository(), o)
	return o, nil
}

// announce notifies matchable couriers within the radius of the pickup.
func (h CreateOrderCommandHandler) announce(ctx context.Context, couriers ports.CourierRepository, o *order.Order) {
	pickup := o.Pickup().Point()
	if pickup == nil {
		return
	}
	nearby, err := couriers.ListMatchable(ctx)
	if err != nil {
		h.logger.Warnw("order_announce_failed", "order_id", o.ID().String(), "error", err)
		return
	}

	box := newOutbox(h.notifier, h.logger)
	for _, c := range nearby {
		if !c.CanCarry(o.Package().Vehicle()) {
			continue
		}
		if c.Position().DistanceTo(*pickup) > h.radiusKm {
			continue
		}
		box.add(ports.NotifyOrderNearby, c.ID(), o.ID(), map[string]string{
			"status":         o.Status().String(),
			"proposed_price": o.ProposedPrice().String(),
		})
	}
	box.flush(ctx)
}

// estimate asks the estimator for distance and duration between both stops.
func estimate(ctx context.Context, geo ports.GeoEstimator, o *order.Order, logger *zap.SugaredLogger) {
	if geo == nil {
		return
	}
	km, minutes, err := geo.DistanceAndDuration(ctx, o.Pickup(), o.Delivery())
	if err != nil {
		logger.Warnw("order_estimate_failed", "order_id", o.ID().String(), "error", err)
		return
	}
	if err = o.SetEstimate(km, minutes); err != nil {
		logger.Warnw("order_estimate_rejected", "order_id", o.ID().String(), "error", err)
	}
}
