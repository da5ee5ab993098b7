// Package collabrepo persists collaborative participants.
package collabrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ParticipantDTO is one row of collaborative_participants.
type ParticipantDTO struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_participant_order_courier"`
	CourierID   uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_participant_order_courier"`
	Role        string              `gorm:"type:varchar(20);not null"`
	Share       decimal.Decimal     `gorm:"type:numeric(5,2);not null"`
	Status      string              `gorm:"type:varchar(20);not null"`
	JoinedAt    time.Time           `gorm:"not null"`
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	Earnings    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	PaidAt      *time.Time
	PayoutRef   string              `gorm:"type:varchar(120)"`
}

func (ParticipantDTO) TableName() string {
	return "collaborative_participants"
}

// GormParticipantRepository implements ports.ParticipantRepository.
type GormParticipantRepository struct {
	db *gorm.DB
}

func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

func (r *GormParticipantRepository) Add(ctx context.Context, p *collab.Participant) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dto := fromDomain(p)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormParticipantRepository) Update(ctx context.Context, p *collab.Participant) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dto := fromDomain(p)
	result := r.db.WithContext(ctx).Model(&ParticipantDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("participant", p.ID().String())
	}
	return nil
}

func (r *GormParticipantRepository) Get(ctx context.Context, id kernel.UUID) (*collab.Participant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var dto ParticipantDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("participant", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormParticipantRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*collab.Participant, error) {
	var dtos []ParticipantDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("joined_at").
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	participants := make([]*collab.Participant, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func fromDomain(p *collab.Participant) ParticipantDTO {
	s := p.Snapshot()
	dto := ParticipantDTO{
		ID:          s.ID.Bytes(),
		OrderID:     s.OrderID.Bytes(),
		CourierID:   s.CourierID.Bytes(),
		Role:        string(s.Role),
		Share:       s.Share,
		Status:      string(s.Status),
		JoinedAt:    s.JoinedAt,
		AcceptedAt:  s.AcceptedAt,
		CompletedAt: s.CompletedAt,
		PaidAt:      s.PaidAt,
		PayoutRef:   s.PayoutRef,
	}
	if s.Earnings != nil {
		dto.Earnings = decimal.NewNullDecimal(s.Earnings.Amount())
	}
	return dto
}

func toDomain(dto ParticipantDTO) (*collab.Participant, error) {
	id, idErr := kernel.UUIDFromGoogle(dto.ID)
	orderID, orderErr := kernel.UUIDFromGoogle(dto.OrderID)
	courierID, courierErr := kernel.UUIDFromGoogle(dto.CourierID)
	if err := errors.Join(idErr, orderErr, courierErr); err != nil {
		return nil, err
	}

	s := collab.Snapshot{
		ID:          id,
		OrderID:     orderID,
		CourierID:   courierID,
		Role:        collab.Role(dto.Role),
		Share:       dto.Share,
		Status:      collab.Status(dto.Status),
		JoinedAt:    dto.JoinedAt.UTC(),
		AcceptedAt:  utc(dto.AcceptedAt),
		CompletedAt: utc(dto.CompletedAt),
		PaidAt:      utc(dto.PaidAt),
		PayoutRef:   dto.PayoutRef,
	}
	if dto.Earnings.Valid {
		amount, err := kernel.NewMoney(dto.Earnings.Decimal)
		if err != nil {
			return nil, err
		}
		s.Earnings = &amount
	}
	return collab.RestoreParticipant(s)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
