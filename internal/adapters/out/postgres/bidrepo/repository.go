package bidrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormBidRepository implements ports.BidRepository.
type GormBidRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormBidRepository(db *gorm.DB, tracker aggregateTracker) *GormBidRepository {
	return &GormBidRepository{db: db, tracker: tracker}
}

func (r *GormBidRepository) Add(ctx context.Context, b *bid.Bid) error {
	if err := b.Validate(); err != nil {
		return err
	}
	dto := bidFromDomain(b)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}
	r.tracker.TrackAggregate(b.ID(), b)
	return nil
}

// Update writes b over a row that is still pending. Bids never change after
// leaving pending, so a row already settled by another transaction yields a
// conflict instead of being overwritten.
func (r *GormBidRepository) Update(ctx context.Context, b *bid.Bid) error {
	if err := b.Validate(); err != nil {
		return err
	}
	dto := bidFromDomain(b)
	result := r.db.WithContext(ctx).Model(&BidDTO{}).
		Where("id = ? AND status = ?", dto.ID, string(bid.StatusPending)).
		Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		stored, err := r.Get(ctx, b.ID())
		if err != nil {
			return err
		}
		return errs.NewConflictErrorWithDetails("bid is no longer pending",
			map[string]any{"bid_status": string(stored.Status())})
	}
	r.tracker.TrackAggregate(b.ID(), b)
	return nil
}

func (r *GormBidRepository) Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var dto BidDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("bid", id.String())
		}
		return nil, err
	}
	return bidToDomain(dto)
}

// ListByOrder returns the order's bids oldest first, optionally only those of
// one courier.
func (r *GormBidRepository) ListByOrder(ctx context.Context, orderID kernel.UUID, courierID *kernel.UUID) ([]*bid.Bid, error) {
	q := r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes())
	if courierID != nil {
		q = q.Where("courier_id = ?", courierID.Bytes())
	}
	return r.find(q)
}

func (r *GormBidRepository) ListPendingByOrder(ctx context.Context, orderID kernel.UUID) ([]*bid.Bid, error) {
	return r.find(r.db.WithContext(ctx).Where("order_id = ? AND status = ?", orderID.Bytes(), string(bid.StatusPending)))
}

func (r *GormBidRepository) find(q *gorm.DB) ([]*bid.Bid, error) {
	var dtos []BidDTO
	if err := q.Order("created_at").Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	bids := make([]*bid.Bid, 0, len(dtos))
	for _, dto := range dtos {
		b, err := bidToDomain(dto)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}

// GormCounterOfferRepository implements ports.CounterOfferRepository.
type GormCounterOfferRepository struct {
	db *gorm.DB
}

func NewGormCounterOfferRepository(db *gorm.DB) *GormCounterOfferRepository {
	return &GormCounterOfferRepository{db: db}
}

func (r *GormCounterOfferRepository) Add(ctx context.Context, c *bid.CounterOffer) error {
	dto := counterFromDomain(c)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCounterOfferRepository) Update(ctx context.Context, c *bid.CounterOffer) error {
	dto := counterFromDomain(c)
	result := r.db.WithContext(ctx).Model(&CounterOfferDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("counter offer", c.ID().String())
	}
	return nil
}

func (r *GormCounterOfferRepository) Get(ctx context.Context, id kernel.UUID) (*bid.CounterOffer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var dto CounterOfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("counter offer", id.String())
		}
		return nil, err
	}
	return counterToDomain(dto)
}
