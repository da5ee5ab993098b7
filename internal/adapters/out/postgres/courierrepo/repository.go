package courierrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCourierRepository implements ports.CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&CourierDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListMatchable returns online, verified couriers with a known position,
// oldest profile first.
func (r *GormCourierRepository) ListMatchable(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).
		Where("online = ? AND verified = ?", true, true).
		Where("lat IS NOT NULL AND lng IS NOT NULL").
		Order("created_at").
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}

func (r *GormCourierRepository) ListStaleOnline(
	ctx context.Context,
	seenBefore time.Time,
	limit int,
) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).
		Where("online = ?", true).
		Where("COALESCE(last_seen_at, created_at) < ?", seenBefore.UTC()).
		Order("COALESCE(last_seen_at, created_at)").
		Order("id").
		Limit(max(limit, 1)).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}

type statsRow struct {
	CourierID uuid.UUID
	Total     int
	Completed int
	Recent    int
}

// Stats counts every order ever assigned to each courier, the completed ones,
// and those completed since recentSince.
func (r *GormCourierRepository) Stats(
	ctx context.Context,
	ids []kernel.UUID,
	recentSince time.Time,
) (map[kernel.UUID]courier.Stats, error) {
	out := make(map[kernel.UUID]courier.Stats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	completed := order.Completed.String()
	var rows []statsRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			courier_id,
			COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed,
			SUM(CASE WHEN status = ? AND completed_at >= ? THEN 1 ELSE 0 END) AS recent
		FROM orders
		WHERE courier_id IN ?
		GROUP BY courier_id
	`, completed, completed, recentSince.UTC(), raw).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		id, err := kernel.UUIDFromGoogle(row.CourierID)
		if err != nil {
			return nil, err
		}
		out[id] = courier.Stats{Total: row.Total, Completed: row.Completed, Recent7d: row.Recent}
	}
	return out, nil
}
