package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

// CounterOfferCommandHandler handles both sides of a price negotiation on
// one bid. Both sides lock the order row, so a resolve cannot reprice a bid
// that a concurrent accept has already settled.
type CounterOfferCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewCounterOfferCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) CounterOfferCommandHandler {
	return CounterOfferCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Create lets the owner or staff answer a pending bid of an open order with
// another price.
func (h CounterOfferCommandHandler) Create(ctx context.Context, cmd CreateCounterOfferCommand) (*bid.CounterOffer, error) {
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
	if err = authorize(h.authz, cmd.Actor(), actor.OpCounterCreate, rels); err != nil {
		return nil, err
	}
	if o.Status() != order.Bidding {
		return nil, order.ErrNotOpenToOffers
	}

	b, err := uow.BidRepository().Get(ctx, cmd.BidID())
	if err != nil {
		return nil, err
	}
	if !b.BelongsTo(o.ID()) {
		return nil, errs.NewObjectNotFoundError("bid", cmd.BidID().String())
	}

	counter, err := bid.NewCounterOffer(cmd.CounterID(), b, cmd.Price(), cmd.Message(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = uow.CounterOfferRepository().Add(ctx, counter); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("counter_offer_created",
		"order_id", o.ID().String(),
		"bid_id", b.ID().String(),
		"counter_offer_id", counter.ID().String(),
		"price", counter.Price().String(),
	)
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyCounterOffer, b.CourierID(), o.ID(), map[string]string{
		"counter_offer_id": counter.ID().String(),
		"price":            counter.Price().String(),
		"message":          counter.Message(),
	})
	box.flush(ctx)
	return counter, nil
}

// Resolve lets the courier behind the bid accept or decline. Accepting
// changes the bid's price; the bid stays pending for the owner to accept.
func (h CounterOfferCommandHandler) Resolve(ctx context.Context, cmd ResolveCounterOfferCommand) (*bid.CounterOffer, error) {
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
	counterRepo := uow.CounterOfferRepository()
	counter, err := counterRepo.Get(ctx, cmd.CounterID())
	if err != nil {
		return nil, err
	}
	if !counter.OrderID().IsEqual(o.ID()) {
		return nil, errs.NewObjectNotFoundError("counter offer", cmd.CounterID().String())
	}
	bidRepo := uow.BidRepository()
	b, err := bidRepo.Get(ctx, counter.BidID())
	if err != nil {
		return nil, err
	}

	facts := services.OrderFacts{IsBidder: b.CourierID().IsEqual(cmd.Actor().ID())}
	rels := services.Relationships(cmd.Actor(), o, facts)
	if err = authorize(h.authz, cmd.Actor(), actor.OpCounterResolve, rels); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if cmd.Accept() {
		if o.Status() != order.Bidding {
			return nil, order.ErrNotOpenToOffers
		}
		if err = counter.Accept(b, now); err != nil {
			return nil, err
		}
		if err = bidRepo.Update(ctx, b); err != nil {
			return nil, err
		}
	} else if err = counter.Decline(b, now); err != nil {
		return nil, err
	}
	if err = counterRepo.Update(ctx, counter); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("counter_offer_resolved",
		"order_id", o.ID().String(),
		"counter_offer_id", counter.ID().String(),
		"status", string(counter.Status()),
	)
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyCounterResolved, o.ClientID(), o.ID(), map[string]string{
		"counter_offer_id": counter.ID().String(),
		"status":           string(counter.Status()),
	})
	box.flush(ctx)
	return counter, nil
}
