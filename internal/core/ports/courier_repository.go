package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository persists courier profiles and derives their delivery
// history from orders.
type CourierRepository interface {
	Add(ctx context.Context, c *courier.Courier) error
	Update(ctx context.Context, c *courier.Courier) error
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// ListMatchable returns online, verified couriers with a known position
	// in a stable order.
	ListMatchable(ctx context.Context) ([]*courier.Courier, error)

	// ListStaleOnline returns up to limit online couriers not seen since
	// seenBefore, longest silent first. Couriers that never reported count
	// as silent since they registered.
	ListStaleOnline(ctx context.Context, seenBefore time.Time, limit int) ([]*courier.Courier, error)

	// Stats counts assigned and completed orders per courier, plus
	// completions since recentSince. Couriers without history are absent.
	Stats(ctx context.Context, ids []kernel.UUID, recentSince time.Time) (map[kernel.UUID]courier.Stats, error)
}
