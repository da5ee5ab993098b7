package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListTrackingQueryHandler returns the position history of an order, oldest
// first.
type ListTrackingQueryHandler struct {
	db         *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
}

func NewListTrackingQueryHandler(db *gorm.DB, uowFactory ports.UnitOfWorkFactory, authz ports.Authorizer) ListTrackingQueryHandler {
	return ListTrackingQueryHandler{db: db, uowFactory: uowFactory, authz: authz}
}

func (h ListTrackingQueryHandler) Handle(ctx context.Context, query OrderScopedQuery) ([]order.TrackingPoint, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(h.authz, query.Actor(), actor.OpTrackingRead, services.Relationships(query.Actor(), o, services.OrderFacts{})); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			courier_id,
			lat,
			lng,
			recorded_at
		FROM tracking_points
		WHERE order_id = ?
		ORDER BY recorded_at, id
	`, o.ID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]order.TrackingPoint, 0)
	for rows.Next() {
		var id, courierID uuid.UUID
		var lat, lng float64
		var recordedAt time.Time

		if err = rows.Scan(&id, &courierID, &lat, &lng, &recordedAt); err != nil {
			return nil, err
		}

		p := order.TrackingPoint{OrderID: o.ID(), RecordedAt: recordedAt.UTC()}
		if p.ID, err = kernel.UUIDFromGoogle(id); err != nil {
			return nil, err
		}
		if p.CourierID, err = kernel.UUIDFromGoogle(courierID); err != nil {
			return nil, err
		}
		if p.Point, err = kernel.NewGeoPoint(lat, lng); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
