package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// Snapshot is the flat persisted form of an Order.
type Snapshot struct {
	ID            kernel.UUID
	ClientID      kernel.UUID
	CourierID     *kernel.UUID
	Pickup        kernel.Address
	Delivery      kernel.Address
	Package       PackageDetails
	ProposedPrice kernel.Money
	FinalPrice    *kernel.Money
	Type          Type
	Status        Status
	RequiresOTP   bool

	OTPCode            string
	OTPSentAt          *time.Time
	OTPVerifiedAt      *time.Time
	OTPAttempts        int
	OTPChannel         Channel
	OTPFallbackPayload string

	CreatedAt    time.Time
	AcceptedAt   *time.Time
	PickedUpAt   *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string

	DistanceKm       *float64
	EstimatedMinutes *int
	ActualMinutes    *int

	Version int
}

// RestoreOrder rebuilds an order from storage, re-checking the invariants
// that the persisted row must already satisfy.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		guard:            guard.NewConstructorGuard(),
		courierID:        s.CourierID,
		pkg:              s.Package,
		finalPrice:       s.FinalPrice,
		requiresOTP:      s.RequiresOTP,
		createdAt:        s.CreatedAt,
		acceptedAt:       s.AcceptedAt,
		pickedUpAt:       s.PickedUpAt,
		deliveredAt:      s.DeliveredAt,
		completedAt:      s.CompletedAt,
		cancelledAt:      s.CancelledAt,
		cancelReason:     s.CancelReason,
		distanceKm:       s.DistanceKm,
		estimatedMinutes: s.EstimatedMinutes,
		actualMinutes:    s.ActualMinutes,
		version:          s.Version,
		otp: OTP{
			code:            s.OTPCode,
			sentAt:          s.OTPSentAt,
			verifiedAt:      s.OTPVerifiedAt,
			attempts:        s.OTPAttempts,
			channel:         s.OTPChannel,
			fallbackPayload: s.OTPFallbackPayload,
		},
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setClientID(s.ClientID),
		o.setAddresses(s.Pickup, s.Delivery),
		o.setProposedPrice(s.ProposedPrice),
		o.setType(s.Type),
		s.Status.Validate(),
		s.Status.ValidateCourierPresence(s.CourierID != nil),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	return o, nil
}

// Snapshot flattens the order for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                 o.id,
		ClientID:           o.clientID,
		CourierID:          o.CourierID(),
		Pickup:             o.pickup,
		Delivery:           o.delivery,
		Package:            o.pkg,
		ProposedPrice:      o.proposedPrice,
		FinalPrice:         o.FinalPrice(),
		Type:               o.orderType,
		Status:             o.status,
		RequiresOTP:        o.requiresOTP,
		OTPCode:            o.otp.code,
		OTPSentAt:          copyTime(o.otp.sentAt),
		OTPVerifiedAt:      copyTime(o.otp.verifiedAt),
		OTPAttempts:        o.otp.attempts,
		OTPChannel:         o.otp.channel,
		OTPFallbackPayload: o.otp.fallbackPayload,
		CreatedAt:          o.createdAt,
		AcceptedAt:         copyTime(o.acceptedAt),
		PickedUpAt:         copyTime(o.pickedUpAt),
		DeliveredAt:        copyTime(o.deliveredAt),
		CompletedAt:        copyTime(o.completedAt),
		CancelledAt:        copyTime(o.cancelledAt),
		CancelReason:       o.cancelReason,
		DistanceKm:         o.DistanceKm(),
		EstimatedMinutes:   copyInt(o.estimatedMinutes),
		ActualMinutes:      copyInt(o.actualMinutes),
		Version:            o.version,
	}
}
