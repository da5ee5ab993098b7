// Package courierrepo maps courier profiles to the couriers table and
// derives delivery history from orders.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// CourierDTO is one row of the couriers table.
type CourierDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Vehicle    string    `gorm:"type:varchar(20);not null"`
	Online     bool      `gorm:"not null;index:idx_couriers_available"`
	Verified   bool      `gorm:"not null;index:idx_couriers_available"`
	Lat        *float64
	Lng        *float64
	LastSeenAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (CourierDTO) TableName() string {
	return "couriers"
}

func fromDomain(c *courier.Courier) CourierDTO {
	s := c.Snapshot()
	dto := CourierDTO{
		ID:         s.ID.Bytes(),
		Name:       s.Name,
		Vehicle:    string(s.Vehicle),
		Online:     s.Online,
		Verified:   s.Verified,
		LastSeenAt: s.LastSeenAt,
		CreatedAt:  s.CreatedAt,
	}
	if s.Position != nil {
		lat, lng := s.Position.Lat(), s.Position.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	s := courier.Snapshot{
		ID:        id,
		Name:      dto.Name,
		Vehicle:   order.VehicleClass(dto.Vehicle),
		Online:    dto.Online,
		Verified:  dto.Verified,
		CreatedAt: dto.CreatedAt.UTC(),
	}
	if dto.LastSeenAt != nil {
		seen := dto.LastSeenAt.UTC()
		s.LastSeenAt = &seen
	}
	if dto.Lat != nil && dto.Lng != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if pointErr != nil {
			return nil, pointErr
		}
		s.Position = &p
	}
	return courier.RestoreCourier(s)
}
