package ports

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
)

// BidRepository persists bids.
type BidRepository interface {
	Add(ctx context.Context, b *bid.Bid) error
	Update(ctx context.Context, b *bid.Bid) error
	Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error)

	// ListByOrder returns an order's bids oldest first. A non-nil courierID
	// keeps only that courier's bids.
	ListByOrder(ctx context.Context, orderID kernel.UUID, courierID *kernel.UUID) ([]*bid.Bid, error)

	ListPendingByOrder(ctx context.Context, orderID kernel.UUID) ([]*bid.Bid, error)
}

// CounterOfferRepository persists counter offers.
type CounterOfferRepository interface {
	Add(ctx context.Context, c *bid.CounterOffer) error
	Update(ctx context.Context, c *bid.CounterOffer) error
	Get(ctx context.Context, id kernel.UUID) (*bid.CounterOffer, error)
}
