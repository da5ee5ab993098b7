package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

// AcceptBidResult is the outcome of a successful acceptance.
type AcceptBidResult struct {
	Order    *order.Order
	Accepted *bid.Bid
	Rejected []*bid.Bid
}

// AcceptBidCommandHandler assigns the bidding courier, fixes the final
// price and rejects every rival bid in one transaction.
type AcceptBidCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewAcceptBidCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) AcceptBidCommandHandler {
	return AcceptBidCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Handle locks the order row and relies on the version-guarded update, so
// of two concurrent acceptances only one commits; the other sees a closed
// order or a stale version and gets a conflict.
func (h AcceptBidCommandHandler) Handle(ctx context.Context, cmd AcceptBidCommand) (AcceptBidResult, error) {
	if err := cmd.Validate(); err != nil {
		return AcceptBidResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AcceptBidResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	bidRepo := uow.BidRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return AcceptBidResult{}, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpBidAccept, rels); err != nil {
		return AcceptBidResult{}, err
	}
	if o.Status() != order.Bidding {
		return AcceptBidResult{}, order.ErrNotOpenToOffers
	}

	winner, err := bidRepo.Get(ctx, cmd.BidID())
	if err != nil {
		return AcceptBidResult{}, err
	}
	if !winner.BelongsTo(o.ID()) {
		return AcceptBidResult{}, errs.NewObjectNotFoundError("bid", cmd.BidID().String())
	}
	if !winner.IsPending() {
		return AcceptBidResult{}, errs.NewConflictErrorWithDetails("bid is no longer pending",
			map[string]any{"bid_status": string(winner.Status())})
	}

	now := h.clock.Now()
	if err = o.AcceptBid(winner.CourierID(), winner.Price(), now); err != nil {
		return AcceptBidResult{}, err
	}
	if err = winner.Accept(now); err != nil {
		return AcceptBidResult{}, err
	}
	if err = bidRepo.Update(ctx, winner); err != nil {
		return AcceptBidResult{}, err
	}
	rejected, err := rejectPendingBids(ctx, bidRepo, o.ID(), now)
	if err != nil {
		return AcceptBidResult{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return AcceptBidResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return AcceptBidResult{}, err
	}

	h.logger.Infow("bid_accepted",
		"order_id", o.ID().String(),
		"bid_id", winner.ID().String(),
		"courier_id", winner.CourierID().String(),
		"final_price", winner.Price().String(),
		"rejected", len(rejected),
	)
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyBidAccepted, winner.CourierID(), o.ID(), map[string]string{
		"bid_id": winner.ID().String(),
		"price":  winner.Price().String(),
	})
	for _, b := range rejected {
		box.add(ports.NotifyBidRejected, b.CourierID(), o.ID(), map[string]string{"bid_id": b.ID().String()})
	}
	box.flush(ctx)

	return AcceptBidResult{Order: o, Accepted: winner, Rejected: rejected}, nil
}

// rejectPendingBids closes every bid of the order that is still pending.
func rejectPendingBids(ctx context.Context, repo ports.BidRepository, orderID kernel.UUID, now time.Time) ([]*bid.Bid, error) {
	pending, err := repo.ListPendingByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	rejected := make([]*bid.Bid, 0, len(pending))
	for _, b := range pending {
		if err = b.Reject(now); err != nil {
			return nil, err
		}
		if err = repo.Update(ctx, b); err != nil {
			return nil, err
		}
		rejected = append(rejected, b)
	}
	return rejected, nil
}
