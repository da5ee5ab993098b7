package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// TrackingPoint is one position report made by the assigned courier while
// the order is in progress.
type TrackingPoint struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	CourierID  kernel.UUID
	Point      kernel.GeoPoint
	RecordedAt time.Time
}

// Track validates that courierID may report a position for the order now
// and returns the point to store.
func (o *Order) Track(id, courierID kernel.UUID, point kernel.GeoPoint, now time.Time) (TrackingPoint, error) {
	if err := errors.Join(
		requireID("tracking point id", id),
		requireID("courier id", courierID),
	); err != nil {
		return TrackingPoint{}, err
	}
	if !o.IsAssignedTo(courierID) {
		return TrackingPoint{}, errs.NewForbiddenError("tracking", "only the assigned courier reports positions")
	}
	if o.status != InProgress {
		return TrackingPoint{}, errs.NewConflictErrorWithDetails(
			"tracking is only accepted while in_progress",
			map[string]any{"status": o.status.String()},
		)
	}
	return TrackingPoint{
		ID:         id,
		OrderID:    o.id,
		CourierID:  courierID,
		Point:      point,
		RecordedAt: now.UTC(),
	}, nil
}

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
