package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// UpdateOrderCommandHandler applies a patch to a pending or bidding order.
type UpdateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	geo        ports.GeoEstimator
	authz      ports.Authorizer
	logger     *zap.SugaredLogger
}

func NewUpdateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	geo ports.GeoEstimator,
	authz ports.Authorizer,
	logger *zap.SugaredLogger,
) UpdateOrderCommandHandler {
	return UpdateOrderCommandHandler{uowFactory: uowFactory, geo: geo, authz: authz, logger: nopLogger(logger)}
}

// Handle allows the owner or staff to edit. Moving either stop re-runs the
// estimator.
func (h UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpOrderUpdate, rels); err != nil {
		return nil, err
	}

	moved, err := o.Update(cmd.Patch())
	if err != nil {
		return nil, err
	}
	if moved {
		estimate(ctx, h.geo, o, h.logger)
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("order_updated", "order_id", o.ID().String(), "moved", moved)
	return o, nil
}
