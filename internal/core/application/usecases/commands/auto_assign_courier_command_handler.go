package commands

import (
	"context"

	"dispatch/internal/core/application/usecases/candidates"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// AutoAssignResult reports the chosen courier, if any.
type AutoAssignResult struct {
	Order    *order.Order
	Assigned bool
	Match    services.RankedCourier
}

// AutoAssignCourierCommandHandler moves an order straight to accepted with
// the top-ranked courier at the proposed price.
type AutoAssignCourierCommandHandler struct {
	uowFactory UoWFactory
	matcher    *services.Matcher
	loader     *candidates.Loader
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewAutoAssignCourierCommandHandler(
	uowFactory UoWFactory,
	matcher *services.Matcher,
	loader *candidates.Loader,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) AutoAssignCourierCommandHandler {
	return AutoAssignCourierCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		loader:     loader,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Handle returns Assigned=false without error when nobody matches. Pending
// bids of a bidding order are rejected.
func (h AutoAssignCourierCommandHandler) Handle(ctx context.Context, cmd AutoAssignCourierCommand) (AutoAssignResult, error) {
	if err := cmd.Validate(); err != nil {
		return AutoAssignResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AutoAssignResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return AutoAssignResult{}, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpMatchAutoAssign, rels); err != nil {
		return AutoAssignResult{}, err
	}

	now := h.clock.Now()
	pool, err := h.loader.Load(ctx, uow.CourierRepository(), now)
	if err != nil {
		return AutoAssignResult{}, err
	}
	best, ok := h.matcher.Best(o, pool)
	if !ok {
		h.logger.Infow("auto_assign_no_candidate", "order_id", o.ID().String())
		return AutoAssignResult{Order: o}, nil
	}

	if err = o.AssignCourier(best.CourierID, now); err != nil {
		return AutoAssignResult{}, err
	}
	rejected, err := rejectPendingBids(ctx, uow.BidRepository(), o.ID(), now)
	if err != nil {
		return AutoAssignResult{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return AutoAssignResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return AutoAssignResult{}, err
	}

	h.logger.Infow("courier_auto_assigned",
		"order_id", o.ID().String(),
		"courier_id", best.CourierID.String(),
		"score", best.Score,
		"distance_km", best.DistanceKm,
	)
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyCourierAssigned, best.CourierID, o.ID(), map[string]string{
		"price": o.ProposedPrice().String(),
	})
	box.add(ports.NotifyCourierAssigned, o.ClientID(), o.ID(), map[string]string{
		"courier_id": best.CourierID.String(),
	})
	for _, b := range rejected {
		box.add(ports.NotifyBidRejected, b.CourierID(), o.ID(), map[string]string{"bid_id": b.ID().String()})
	}
	box.flush(ctx)

	return AutoAssignResult{Order: o, Assigned: true, Match: best}, nil
}

// AssignPendingExpressCommandHandler feeds waiting express orders to
// auto-assignment one transaction at a time.
type AssignPendingExpressCommandHandler struct {
	uowFactory UoWFactory
	autoAssign AutoAssignCourierCommandHandler
	logger     *zap.SugaredLogger
}

func NewAssignPendingExpressCommandHandler(
	uowFactory UoWFactory,
	autoAssign AutoAssignCourierCommandHandler,
	logger *zap.SugaredLogger,
) AssignPendingExpressCommandHandler {
	return AssignPendingExpressCommandHandler{uowFactory: uowFactory, autoAssign: autoAssign, logger: nopLogger(logger)}
}

// Handle returns how many orders received a courier. A failure on one order
// is logged and does not stop the batch.
func (h AssignPendingExpressCommandHandler) Handle(ctx context.Context, cmd AssignPendingExpressCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	waiting, err := h.uowFactory.Create().OrderRepository().ListPendingExpress(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	ids := make([]kernel.UUID, 0, len(waiting))
	for _, o := range waiting {
		ids = append(ids, o.ID())
	}

	assigned := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return assigned, ctx.Err()
		}
		sub, err := NewAutoAssignCourierCommand(actor.System(), id)
		if err != nil {
			return assigned, err
		}
		res, err := h.autoAssign.Handle(ctx, sub)
		if err != nil {
			h.logger.Warnw("express_auto_assign_failed", "order_id", id.String(), "error", err)
			continue
		}
		if res.Assigned {
			assigned++
		}
	}
	return assigned, nil
}
