package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// CancelOrderCommandHandler cancels an order and expires its open bids.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Handle lets the owner or staff cancel. The other side of the order is
// notified after commit.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
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

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpOrderCancel, rels); err != nil {
		return nil, err
	}

	box := newOutbox(h.notifier, h.logger)
	if err = cancelOrder(ctx, uow, o, cmd.Actor(), cmd.Reason(), h.clock.Now(), box); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("order_cancelled", "order_id", o.ID().String(), "actor_id", cmd.Actor().ID().String())
	box.flush(ctx)
	return o, nil
}

// cancelOrder cancels o, expires its pending bids and queues notifications
// for everyone affected other than the caller.
func cancelOrder(
	ctx context.Context,
	uow interface {
		OrderRepoFactory
		BidRepoFactory
	},
	o *order.Order,
	caller actor.Actor,
	reason string,
	now time.Time,
	box *outbox,
) error {
	if err := o.Cancel(reason, now); err != nil {
		return err
	}

	bidRepo := uow.BidRepository()
	pending, err := bidRepo.ListPendingByOrder(ctx, o.ID())
	if err != nil {
		return err
	}
	expired := make([]*bid.Bid, 0, len(pending))
	for _, b := range pending {
		if err = b.Expire(now); err != nil {
			return err
		}
		if err = bidRepo.Update(ctx, b); err != nil {
			return err
		}
		expired = append(expired, b)
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}

	data := map[string]string{"reason": reason}
	if !o.IsOwnedBy(caller.ID()) {
		box.add(ports.NotifyOrderCancelled, o.ClientID(), o.ID(), data)
	}
	if courierID := o.CourierID(); courierID != nil && !courierID.IsEqual(caller.ID()) {
		box.add(ports.NotifyOrderCancelled, *courierID, o.ID(), data)
	}
	for _, b := range expired {
		box.add(ports.NotifyOrderCancelled, b.CourierID(), o.ID(), data)
	}
	return nil
}
