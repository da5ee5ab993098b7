package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderScope restricts which orders a listing may return. Set fields are
// combined with OR; an empty scope returns everything.
type OrderScope struct {
	ClientID    *kernel.UUID
	CourierID   *kernel.UUID
	IncludeOpen bool
}

// IsUnrestricted reports whether the scope admits every order.
func (s OrderScope) IsUnrestricted() bool {
	return s.ClientID == nil && s.CourierID == nil && !s.IncludeOpen
}

// OrderFilter narrows a listing inside its scope.
type OrderFilter struct {
	Scope  OrderScope
	Status *order.Status
	Type   *order.Type
	Limit  int
	Offset int
}

// OrderRepository persists order aggregates.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the aggregate if its stored version still matches and
	// advances the version. A stale version is reported as a conflict.
	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate loads the order and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// List returns orders newest first.
	List(ctx context.Context, filter OrderFilter) ([]*order.Order, error)

	// ListPendingExpress returns the oldest express orders still waiting for
	// a courier.
	ListPendingExpress(ctx context.Context, limit int) ([]*order.Order, error)

	AddTrackingPoint(ctx context.Context, point order.TrackingPoint) error
}
