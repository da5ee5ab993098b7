package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// ChangeOrderStatusCommandHandler moves an order along its lifecycle.
type ChangeOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	notifier   ports.Notifier
	settlement ports.SettlementQueue
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	notifier ports.Notifier,
	settlement ports.SettlementQueue,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		notifier:   notifier,
		settlement: settlement,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Handle checks the capability for the target status, then the status
// machine. Requesting the current status is a conflict, so side effects
// such as settlement are never applied twice. Settlement of a completed
// order is queued after commit.
func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
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
	target := cmd.Target()
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.StatusOperation(target.String()), rels); err != nil {
		return nil, err
	}

	from := o.Status()
	now := h.clock.Now()
	box := newOutbox(h.notifier, h.logger)
	if target == order.Cancelled {
		err = cancelOrder(ctx, uow, o, cmd.Actor(), cmd.Reason(), now, box)
	} else {
		err = transition(ctx, orderRepo, o, target, cmd.Actor(), now, box)
	}
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("order_status_changed",
		"order_id", o.ID().String(),
		"from", from.String(),
		"to", o.Status().String(),
		"actor_id", cmd.Actor().ID().String(),
	)
	box.flush(ctx)

	if o.Status() == order.Completed && h.settlement != nil {
		if err = h.settlement.EnqueueSettlement(ctx, o.ID()); err != nil {
			h.logger.Errorw("settlement_enqueue_failed", "order_id", o.ID().String(), "error", err)
		}
	}
	return o, nil
}

func transition(
	ctx context.Context,
	repo ports.OrderRepository,
	o *order.Order,
	target order.Status,
	caller actor.Actor,
	now time.Time,
	box *outbox,
) error {
	if err := o.TransitionTo(target, now); err != nil {
		return err
	}
	if err := repo.Update(ctx, o); err != nil {
		return err
	}

	data := map[string]string{"status": target.String()}
	if !o.IsOwnedBy(caller.ID()) {
		box.add(ports.NotifyStatusChanged, o.ClientID(), o.ID(), data)
	}
	if courierID := o.CourierID(); courierID != nil && !courierID.IsEqual(caller.ID()) {
		box.add(ports.NotifyStatusChanged, *courierID, o.ID(), data)
	}
	return nil
}
