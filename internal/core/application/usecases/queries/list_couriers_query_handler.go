package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListCouriersQueryHandler reads courier profiles straight from the couriers
// table for back-office screens.
type ListCouriersQueryHandler struct {
	db    *gorm.DB
	authz ports.Authorizer
}

func NewListCouriersQueryHandler(db *gorm.DB, authz ports.Authorizer) ListCouriersQueryHandler {
	return ListCouriersQueryHandler{db: db, authz: authz}
}

func (h ListCouriersQueryHandler) Handle(ctx context.Context, query ListCouriersQuery) ([]CourierView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := authorize(h.authz, query.actor, actor.OpCourierManage, services.ActorRelationships(query.actor)); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			vehicle,
			online,
			verified,
			lat,
			lng,
			last_seen_at
		FROM couriers
		WHERE (? = FALSE OR online = TRUE)
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, query.onlineOnly, query.limit, query.offset).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	couriers := make([]CourierView, 0)
	for rows.Next() {
		var view CourierView
		var id uuid.UUID
		var lat, lng sql.NullFloat64
		var lastSeen sql.NullTime

		err = rows.Scan(
			&id,
			&view.Name,
			&view.Vehicle,
			&view.Online,
			&view.Verified,
			&lat,
			&lng,
			&lastSeen,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromGoogle(id); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			p, pointErr := kernel.NewGeoPoint(lat.Float64, lng.Float64)
			if pointErr != nil {
				return nil, pointErr
			}
			view.Position = &p
		}
		if lastSeen.Valid {
			t := lastSeen.Time.UTC()
			view.LastSeenAt = &t
		}
		couriers = append(couriers, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return couriers, nil
}

