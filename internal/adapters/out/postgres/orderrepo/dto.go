// Package orderrepo maps the order aggregate and its tracking points to the
// orders and tracking_points tables.
package orderrepo

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is one row of the orders table. Child collections live in their
// own tables keyed by order_id.
type OrderDTO struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClientID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	CourierID     *uuid.UUID          `gorm:"type:uuid;index"`
	Pickup        AddressDTO          `gorm:"embedded;embeddedPrefix:pickup_"`
	Delivery      AddressDTO          `gorm:"embedded;embeddedPrefix:delivery_"`
	Package       PackageDTO          `gorm:"embedded;embeddedPrefix:package_"`
	ProposedPrice decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	FinalPrice    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Type          string              `gorm:"type:varchar(20);not null;index:idx_orders_type_status"`
	Status        string              `gorm:"type:varchar(20);not null;index:idx_orders_type_status"`
	RequiresOTP   bool                `gorm:"not null"`
	OTP           OTPDTO              `gorm:"embedded;embeddedPrefix:otp_"`

	CreatedAt    time.Time `gorm:"not null;index"`
	AcceptedAt   *time.Time
	PickedUpAt   *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`

	DistanceKm       *float64
	EstimatedMinutes *int
	ActualMinutes    *int

	Version int `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is an embedded stop.
type AddressDTO struct {
	Line         string `gorm:"type:varchar(300)"`
	Commune      string `gorm:"type:varchar(120)"`
	Lat          *float64
	Lng          *float64
	ContactName  string `gorm:"type:varchar(120)"`
	ContactPhone string `gorm:"type:varchar(20)"`
	ContactEmail string `gorm:"type:varchar(254)"`
}

// PackageDTO is the embedded parcel description.
type PackageDTO struct {
	Description   string `gorm:"type:varchar(500)"`
	Size          string `gorm:"type:varchar(20)"`
	WeightKg      float64
	Fragile       bool
	CargoCategory string `gorm:"type:varchar(60)"`
	Vehicle       string `gorm:"type:varchar(20)"`
}

// OTPDTO is the embedded delivery proof state.
type OTPDTO struct {
	Code            string `gorm:"type:varchar(12)"`
	SentAt          *time.Time
	VerifiedAt      *time.Time
	Attempts        int
	Channel         string `gorm:"type:varchar(20)"`
	FallbackPayload string `gorm:"type:varchar(500)"`
}

// TrackingPointDTO is one row of tracking_points.
type TrackingPointDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tracking_order_time"`
	CourierID  uuid.UUID `gorm:"type:uuid;not null"`
	Lat        float64   `gorm:"not null"`
	Lng        float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index:idx_tracking_order_time"`
}

func (TrackingPointDTO) TableName() string {
	return "tracking_points"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	dto := OrderDTO{
		ID:            s.ID.Bytes(),
		ClientID:      s.ClientID.Bytes(),
		Pickup:        addressFromDomain(s.Pickup),
		Delivery:      addressFromDomain(s.Delivery),
		ProposedPrice: s.ProposedPrice.Amount(),
		Type:          string(s.Type),
		Status:        s.Status.String(),
		RequiresOTP:   s.RequiresOTP,
		Package: PackageDTO{
			Description:   s.Package.Description(),
			Size:          string(s.Package.Size()),
			WeightKg:      s.Package.WeightKg(),
			Fragile:       s.Package.Fragile(),
			CargoCategory: s.Package.CargoCategory(),
			Vehicle:       string(s.Package.Vehicle()),
		},
		OTP: OTPDTO{
			Code:            s.OTPCode,
			SentAt:          s.OTPSentAt,
			VerifiedAt:      s.OTPVerifiedAt,
			Attempts:        s.OTPAttempts,
			Channel:         string(s.OTPChannel),
			FallbackPayload: s.OTPFallbackPayload,
		},
		CreatedAt:        s.CreatedAt,
		AcceptedAt:       s.AcceptedAt,
		PickedUpAt:       s.PickedUpAt,
		DeliveredAt:      s.DeliveredAt,
		CompletedAt:      s.CompletedAt,
		CancelledAt:      s.CancelledAt,
		CancelReason:     s.CancelReason,
		DistanceKm:       s.DistanceKm,
		EstimatedMinutes: s.EstimatedMinutes,
		ActualMinutes:    s.ActualMinutes,
		Version:          s.Version,
	}
	if s.CourierID != nil {
		raw := s.CourierID.Bytes()
		dto.CourierID = &raw
	}
	if s.FinalPrice != nil {
		dto.FinalPrice = decimal.NewNullDecimal(s.FinalPrice.Amount())
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, idErr := kernel.UUIDFromGoogle(dto.ID)
	clientID, clientErr := kernel.UUIDFromGoogle(dto.ClientID)
	pickup, pickupErr := addressToDomain(dto.Pickup)
	delivery, deliveryErr := addressToDomain(dto.Delivery)
	proposed, priceErr := kernel.NewMoney(dto.ProposedPrice)
	status, statusErr := order.ParseStatus(dto.Status)
	pkg, pkgErr := order.NewPackageDetails(order.PackageInput{
		Description:   dto.Package.Description,
		Size:          dto.Package.Size,
		WeightKg:      dto.Package.WeightKg,
		Fragile:       dto.Package.Fragile,
		CargoCategory: dto.Package.CargoCategory,
		Vehicle:       dto.Package.Vehicle,
	})
	if err := errors.Join(idErr, clientErr, pickupErr, deliveryErr, priceErr, statusErr, pkgErr); err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID:                 id,
		ClientID:           clientID,
		Pickup:             pickup,
		Delivery:           delivery,
		Package:            pkg,
		ProposedPrice:      proposed,
		Type:               order.Type(dto.Type),
		Status:             status,
		RequiresOTP:        dto.RequiresOTP,
		OTPCode:            dto.OTP.Code,
		OTPSentAt:          utc(dto.OTP.SentAt),
		OTPVerifiedAt:      utc(dto.OTP.VerifiedAt),
		OTPAttempts:        dto.OTP.Attempts,
		OTPChannel:         order.Channel(dto.OTP.Channel),
		OTPFallbackPayload: dto.OTP.FallbackPayload,
		CreatedAt:          dto.CreatedAt.UTC(),
		AcceptedAt:         utc(dto.AcceptedAt),
		PickedUpAt:         utc(dto.PickedUpAt),
		DeliveredAt:        utc(dto.DeliveredAt),
		CompletedAt:        utc(dto.CompletedAt),
		CancelledAt:        utc(dto.CancelledAt),
		CancelReason:       dto.CancelReason,
		DistanceKm:         dto.DistanceKm,
		EstimatedMinutes:   dto.EstimatedMinutes,
		ActualMinutes:      dto.ActualMinutes,
		Version:            dto.Version,
	}
	if dto.CourierID != nil {
		courierID, err := kernel.UUIDFromGoogle(*dto.CourierID)
		if err != nil {
			return nil, err
		}
		s.CourierID = &courierID
	}
	if dto.FinalPrice.Valid {
		final, err := kernel.NewMoney(dto.FinalPrice.Decimal)
		if err != nil {
			return nil, err
		}
		s.FinalPrice = &final
	}
	return order.RestoreOrder(s)
}

func addressFromDomain(a kernel.Address) AddressDTO {
	dto := AddressDTO{
		Line:         a.Line(),
		Commune:      a.Commune(),
		ContactName:  a.ContactName(),
		ContactPhone: a.ContactPhone(),
		ContactEmail: a.ContactEmail(),
	}
	if p := a.Point(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	in := kernel.AddressInput{
		Line:         dto.Line,
		Commune:      dto.Commune,
		ContactName:  dto.ContactName,
		ContactPhone: dto.ContactPhone,
		ContactEmail: dto.ContactEmail,
	}
	if dto.Lat != nil && dto.Lng != nil {
		p, err := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if err != nil {
			return kernel.Address{}, err
		}
		in.Point = &p
	}
	return kernel.NewAddress(in)
}

func trackingFromDomain(p order.TrackingPoint) TrackingPointDTO {
	return TrackingPointDTO{
		ID:         p.ID.Bytes(),
		OrderID:    p.OrderID.Bytes(),
		CourierID:  p.CourierID.Bytes(),
		Lat:        p.Point.Lat(),
		Lng:        p.Point.Lng(),
		RecordedAt: p.RecordedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
