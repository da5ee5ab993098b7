// Package bidrepo persists bids and counter offers.
package bidrepo

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidDTO is one row of the bids table.
type BidDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_bids_order_status"`
	CourierID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ProposedPickup   *time.Time
	ProposedDelivery *time.Time
	Status           string    `gorm:"type:varchar(20);not null;index:idx_bids_order_status"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (BidDTO) TableName() string {
	return "bids"
}

// CounterOfferDTO is one row of the counter_offers table.
type CounterOfferDTO struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BidID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Message    string          `gorm:"type:varchar(500)"`
	Status     string          `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
	ResolvedAt *time.Time
}

func (CounterOfferDTO) TableName() string {
	return "counter_offers"
}

func bidFromDomain(b *bid.Bid) BidDTO {
	s := b.Snapshot()
	return BidDTO{
		ID:               s.ID.Bytes(),
		OrderID:          s.OrderID.Bytes(),
		CourierID:        s.CourierID.Bytes(),
		Price:            s.Price.Amount(),
		ProposedPickup:   s.ProposedPickup,
		ProposedDelivery: s.ProposedDelivery,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func bidToDomain(dto BidDTO) (*bid.Bid, error) {
	id, idErr := kernel.UUIDFromGoogle(dto.ID)
	orderID, orderErr := kernel.UUIDFromGoogle(dto.OrderID)
	courierID, courierErr := kernel.UUIDFromGoogle(dto.CourierID)
	price, priceErr := kernel.NewMoney(dto.Price)
	if err := errors.Join(idErr, orderErr, courierErr, priceErr); err != nil {
		return nil, err
	}
	return bid.RestoreBid(bid.Snapshot{
		ID:               id,
		OrderID:          orderID,
		CourierID:        courierID,
		Price:            price,
		ProposedPickup:   utc(dto.ProposedPickup),
		ProposedDelivery: utc(dto.ProposedDelivery),
		Status:           bid.Status(dto.Status),
		CreatedAt:        dto.CreatedAt.UTC(),
		UpdatedAt:        dto.UpdatedAt.UTC(),
	})
}

func counterFromDomain(c *bid.CounterOffer) CounterOfferDTO {
	s := c.Snapshot()
	return CounterOfferDTO{
		ID:         s.ID.Bytes(),
		OrderID:    s.OrderID.Bytes(),
		BidID:      s.BidID.Bytes(),
		Price:      s.Price.Amount(),
		Message:    s.Message,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		ResolvedAt: s.ResolvedAt,
	}
}

func counterToDomain(dto CounterOfferDTO) (*bid.CounterOffer, error) {
	id, idErr := kernel.UUIDFromGoogle(dto.ID)
	orderID, orderErr := kernel.UUIDFromGoogle(dto.OrderID)
	bidID, bidErr := kernel.UUIDFromGoogle(dto.BidID)
	price, priceErr := kernel.NewMoney(dto.Price)
	if err := errors.Join(idErr, orderErr, bidErr, priceErr); err != nil {
		return nil, err
	}
	return bid.RestoreCounterOffer(bid.CounterSnapshot{
		ID:         id,
		OrderID:    orderID,
		BidID:      bidID,
		Price:      price,
		Message:    dto.Message,
		Status:     bid.CounterStatus(dto.Status),
		CreatedAt:  dto.CreatedAt.UTC(),
		ResolvedAt: utc(dto.ResolvedAt),
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
