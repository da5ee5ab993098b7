package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// PlaceBidCommandHandler records a courier's bid. A courier may bid more
// than once on the same order.
type PlaceBidCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewPlaceBidCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) PlaceBidCommandHandler {
	return PlaceBidCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Handle locks the order so a bid never lands on an order that is being
// accepted concurrently.
func (h PlaceBidCommandHandler) Handle(ctx context.Context, cmd PlaceBidCommand) (*bid.Bid, error) {
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
	if err = authorize(h.authz, cmd.Actor(), actor.OpBidPlace, rels); err != nil {
		return nil, err
	}
	if o.Status() != order.Bidding {
		return nil, order.ErrNotOpenToOffers
	}

	b, err := bid.NewBid(cmd.BidID(), o.ID(), cmd.Actor().ID(), cmd.Price(), cmd.Times(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = uow.BidRepository().Add(ctx, b); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("bid_placed",
		"order_id", o.ID().String(),
		"bid_id", b.ID().String(),
		"courier_id", b.CourierID().String(),
		"price", b.Price().String(),
	)
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyBidPlaced, o.ClientID(), o.ID(), map[string]string{
		"bid_id": b.ID().String(),
		"price":  b.Price().String(),
	})
	box.flush(ctx)
	return b, nil
}
