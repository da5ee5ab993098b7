package http

import (
	"errors"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// Requests.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p *GeoPoint) toDomain() (*kernel.GeoPoint, error) {
	if p == nil {
		return nil, nil
	}
	point, err := kernel.NewGeoPoint(p.Lat, p.Lng)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

type Address struct {
	Line         string    `json:"line"`
	Commune      string    `json:"commune,omitempty"`
	Location     *GeoPoint `json:"location,omitempty"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
}

func (a Address) toDomain() (kernel.Address, error) {
	point, err := a.Location.toDomain()
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(kernel.AddressInput{
		Line:         a.Line,
		Commune:      a.Commune,
		Point:        point,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
		ContactEmail: a.ContactEmail,
	})
}

type Package struct {
	Description   string  `json:"description,omitempty"`
	Size          string  `json:"size,omitempty"`
	WeightKg      float64 `json:"weight_kg"`
	Fragile       bool    `json:"fragile"`
	CargoCategory string  `json:"cargo_category,omitempty"`
	Vehicle       string  `json:"vehicle,omitempty"`
}

func (p Package) toDomain() (order.PackageDetails, error) {
	return order.NewPackageDetails(order.PackageInput{
		Description:   p.Description,
		Size:          p.Size,
		WeightKg:      p.WeightKg,
		Fragile:       p.Fragile,
		CargoCategory: p.CargoCategory,
		Vehicle:       p.Vehicle,
	})
}

type NewDelivery struct {
	Pickup        Address      `json:"pickup"`
	Delivery      Address      `json:"delivery"`
	Package       Package      `json:"package"`
	ProposedPrice kernel.Money `json:"proposed_price"`
	Type          string       `json:"type"`
	RequiresOTP   *bool        `json:"requires_otp"`
}

func (r NewDelivery) toDraft(forced order.Type) (order.Draft, error) {
	pickup, pickupErr := r.Pickup.toDomain()
	drop, dropErr := r.Delivery.toDomain()
	pkg, pkgErr := r.Package.toDomain()

	orderType := forced
	var typeErr error
	if orderType == "" {
		orderType = order.TypeStandard
		if r.Type != "" {
			orderType, typeErr = order.ParseType(r.Type)
		}
	}
	if err := errors.Join(pickupErr, dropErr, pkgErr, typeErr); err != nil {
		return order.Draft{}, err
	}
	return order.Draft{
		Pickup:        pickup,
		Delivery:      drop,
		Package:       pkg,
		ProposedPrice: r.ProposedPrice,
		Type:          orderType,
		RequiresOTP:   r.RequiresOTP,
	}, nil
}

type DeliveryPatch struct {
	Pickup        *Address      `json:"pickup"`
	Delivery      *Address      `json:"delivery"`
	Package       *Package      `json:"package"`
	ProposedPrice *kernel.Money `json:"proposed_price"`
	RequiresOTP   *bool         `json:"requires_otp"`
}

func (r DeliveryPatch) toPatch() (order.Patch, error) {
	patch := order.Patch{ProposedPrice: r.ProposedPrice, RequiresOTP: r.RequiresOTP}
	var pickupErr, dropErr, pkgErr error
	if r.Pickup != nil {
		var a kernel.Address
		if a, pickupErr = r.Pickup.toDomain(); pickupErr == nil {
			patch.Pickup = &a
		}
	}
	if r.Delivery != nil {
		var a kernel.Address
		if a, dropErr = r.Delivery.toDomain(); dropErr == nil {
			patch.Delivery = &a
		}
	}
	if r.Package != nil {
		var p order.PackageDetails
		if p, pkgErr = r.Package.toDomain(); pkgErr == nil {
			patch.Package = &p
		}
	}
	if err := errors.Join(pickupErr, dropErr, pkgErr); err != nil {
		return order.Patch{}, err
	}
	return patch, nil
}

type StatusChange struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type Cancellation struct {
	Reason string `json:"reason"`
}

type NewBid struct {
	Price              kernel.Money `json:"price"`
	ProposedPickupAt   *time.Time   `json:"proposed_pickup_at"`
	ProposedDeliveryAt *time.Time   `json:"proposed_delivery_at"`
}

type NewCounterOffer struct {
	Price   kernel.Money `json:"price"`
	Message string       `json:"message"`
}

type Resolution struct {
	Accept bool `json:"accept"`
}

type OTPVerification struct {
	Code string `json:"code"`
}

type Proof struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

type JoinRequest struct {
	CourierID *kernel.UUID    `json:"courier_id"`
	Role      string          `json:"role"`
	Share     decimal.Decimal `json:"share"`
}

type ParticipantPatch struct {
	Status *string          `json:"status"`
	Share  *decimal.Decimal `json:"share"`
}

type CourierRegistration struct {
	CourierID kernel.UUID `json:"courier_id"`
	Name      string      `json:"name"`
	Vehicle   string      `json:"vehicle"`
	Verified  bool        `json:"verified"`
}

type Presence struct {
	Online   bool      `json:"online"`
	Location *GeoPoint `json:"location"`
}

// Responses.

type OTPState struct {
	Channel    string     `json:"channel,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts   int        `json:"attempts"`
}

type Delivery struct {
	ID               kernel.UUID   `json:"id"`
	ClientID         kernel.UUID   `json:"client_id"`
	CourierID        *kernel.UUID  `json:"courier_id"`
	Type             string        `json:"type"`
	Status           string        `json:"status"`
	Pickup           Address       `json:"pickup"`
	Delivery         Address       `json:"delivery"`
	Package          Package       `json:"package"`
	ProposedPrice    kernel.Money  `json:"proposed_price"`
	FinalPrice       *kernel.Money `json:"final_price"`
	RequiresOTP      bool          `json:"requires_otp"`
	OTP              OTPState      `json:"otp"`
	DistanceKm       *float64      `json:"distance_km"`
	EstimatedMinutes *int          `json:"estimated_minutes"`
	ActualMinutes    *int          `json:"actual_minutes"`
	CancelReason     string        `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	AcceptedAt       *time.Time    `json:"accepted_at,omitempty"`
	PickedUpAt       *time.Time    `json:"picked_up_at,omitempty"`
	DeliveredAt      *time.Time    `json:"delivered_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
}

func addressFromDomain(a kernel.Address) Address {
	out := Address{
		Line:         a.Line(),
		Commune:      a.Commune(),
		ContactName:  a.ContactName(),
		ContactPhone: a.ContactPhone(),
		ContactEmail: a.ContactEmail(),
	}
	if p := a.Point(); p != nil {
		out.Location = &GeoPoint{Lat: p.Lat(), Lng: p.Lng()}
	}
	return out
}

func deliveryFromDomain(o *order.Order) Delivery {
	pkg := o.Package()
	otp := o.OTP()
	return Delivery{
		ID:        o.ID(),
		ClientID:  o.ClientID(),
		CourierID: o.CourierID(),
		Type:      string(o.Type()),
		Status:    o.Status().String(),
		Pickup:    addressFromDomain(o.Pickup()),
		Delivery:  addressFromDomain(o.Delivery()),
		Package: Package{
			Description:   pkg.Description(),
			Size:          string(pkg.Size()),
			WeightKg:      pkg.WeightKg(),
			Fragile:       pkg.Fragile(),
			CargoCategory: pkg.CargoCategory(),
			Vehicle:       string(pkg.Vehicle()),
		},
		ProposedPrice: o.ProposedPrice(),
		FinalPrice:    o.FinalPrice(),
		RequiresOTP:   o.RequiresOTP(),
		OTP: OTPState{
			Channel:    string(otp.Channel()),
			SentAt:     otp.SentAt(),
			VerifiedAt: otp.VerifiedAt(),
			Attempts:   otp.Attempts(),
		},
		DistanceKm:       o.DistanceKm(),
		EstimatedMinutes: o.EstimatedMinutes(),
		ActualMinutes:    o.ActualMinutes(),
		CancelReason:     o.CancelReason(),
		CreatedAt:        o.CreatedAt(),
		AcceptedAt:       o.AcceptedAt(),
		PickedUpAt:       o.PickedUpAt(),
		DeliveredAt:      o.DeliveredAt(),
		CompletedAt:      o.CompletedAt(),
		CancelledAt:      o.CancelledAt(),
	}
}

func deliveriesFromDomain(orders []*order.Order) []Delivery {
	out := make([]Delivery, 0, len(orders))
	for _, o := range orders {
		out = append(out, deliveryFromDomain(o))
	}
	return out
}

type Bid struct {
	ID                 kernel.UUID  `json:"id"`
	DeliveryID         kernel.UUID  `json:"delivery_id"`
	CourierID          kernel.UUID  `json:"courier_id"`
	Price              kernel.Money `json:"price"`
	Status             string       `json:"status"`
	ProposedPickupAt   *time.Time   `json:"proposed_pickup_at,omitempty"`
	ProposedDeliveryAt *time.Time   `json:"proposed_delivery_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

func bidFromDomain(b *bid.Bid) Bid {
	return Bid{
		ID:                 b.ID(),
		DeliveryID:         b.OrderID(),
		CourierID:          b.CourierID(),
		Price:              b.Price(),
		Status:             string(b.Status()),
		ProposedPickupAt:   b.ProposedPickup(),
		ProposedDeliveryAt: b.ProposedDelivery(),
		CreatedAt:          b.CreatedAt(),
	}
}

func bidsFromDomain(bids []*bid.Bid) []Bid {
	out := make([]Bid, 0, len(bids))
	for _, b := range bids {
		out = append(out, bidFromDomain(b))
	}
	return out
}

type AcceptedBid struct {
	Delivery     Delivery `json:"delivery"`
	AcceptedBid  Bid      `json:"accepted_bid"`
	RejectedBids []Bid    `json:"rejected_bids"`
}

func acceptedFromResult(res commands.AcceptBidResult) AcceptedBid {
	return AcceptedBid{
		Delivery:     deliveryFromDomain(res.Order),
		AcceptedBid:  bidFromDomain(res.Accepted),
		RejectedBids: bidsFromDomain(res.Rejected),
	}
}

type CounterOffer struct {
	ID         kernel.UUID  `json:"id"`
	BidID      kernel.UUID  `json:"bid_id"`
	Price      kernel.Money `json:"price"`
	Message    string       `json:"message,omitempty"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

func counterFromDomain(c *bid.CounterOffer) CounterOffer {
	return CounterOffer{
		ID:         c.ID(),
		BidID:      c.BidID(),
		Price:      c.Price(),
		Message:    c.Message(),
		Status:     string(c.Status()),
		CreatedAt:  c.CreatedAt(),
		ResolvedAt: c.ResolvedAt(),
	}
}

type CourierMatch struct {
	CourierID  kernel.UUID `json:"courier_id"`
	Name       string      `json:"name"`
	Vehicle    string      `json:"vehicle"`
	DistanceKm float64     `json:"distance_km"`
	ETAMinutes float64     `json:"eta_minutes"`
	Rating     float64     `json:"rating"`
	Score      float64     `json:"score"`
}

func matchFromDomain(r services.RankedCourier) CourierMatch {
	return CourierMatch{
		CourierID:  r.CourierID,
		Name:       r.Name,
		Vehicle:    string(r.Vehicle),
		DistanceKm: r.DistanceKm,
		ETAMinutes: r.ETAMinutes,
		Rating:     r.Rating,
		Score:      r.Score,
	}
}

type Assignment struct {
	Assigned bool          `json:"assigned"`
	Delivery Delivery      `json:"delivery"`
	Match    *CourierMatch `json:"match,omitempty"`
}

type TrackingPoint struct {
	ID         kernel.UUID `json:"id"`
	CourierID  kernel.UUID `json:"courier_id"`
	Lat        float64     `json:"lat"`
	Lng        float64     `json:"lng"`
	RecordedAt time.Time   `json:"recorded_at"`
}

func trackingFromDomain(p order.TrackingPoint) TrackingPoint {
	return TrackingPoint{
		ID:         p.ID,
		CourierID:  p.CourierID,
		Lat:        p.Point.Lat(),
		Lng:        p.Point.Lng(),
		RecordedAt: p.RecordedAt,
	}
}

// OTPIssued never carries the code itself.
type OTPIssued struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type OTPVerdict struct {
	Success           bool      `json:"success"`
	RemainingAttempts int       `json:"remaining_attempts"`
	FallbackRequired  bool      `json:"fallback_required"`
	Delivery          *Delivery `json:"delivery,omitempty"`
}

type Participant struct {
	ID          kernel.UUID     `json:"id"`
	CourierID   kernel.UUID     `json:"courier_id"`
	Role        string          `json:"role"`
	Share       decimal.Decimal `json:"share"`
	Status      string          `json:"status"`
	Earnings    *kernel.Money   `json:"earnings"`
	JoinedAt    time.Time       `json:"joined_at"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	PayoutRef   string          `json:"payout_reference,omitempty"`
}

func participantFromDomain(p *collab.Participant) Participant {
	return Participant{
		ID:          p.ID(),
		CourierID:   p.CourierID(),
		Role:        string(p.Role()),
		Share:       p.Share(),
		Status:      string(p.Status()),
		Earnings:    p.Earnings(),
		JoinedAt:    p.JoinedAt(),
		AcceptedAt:  p.AcceptedAt(),
		CompletedAt: p.CompletedAt(),
		PaidAt:      p.PaidAt(),
		PayoutRef:   p.PayoutRef(),
	}
}

type Earning struct {
	ParticipantID kernel.UUID     `json:"participant_id"`
	CourierID     kernel.UUID     `json:"courier_id"`
	Share         decimal.Decimal `json:"share"`
	Amount        kernel.Money    `json:"amount"`
}

type EarningsReport struct {
	DeliveryID     kernel.UUID     `json:"delivery_id"`
	FinalPrice     kernel.Money    `json:"final_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Net            kernel.Money    `json:"net"`
	Earnings       []Earning       `json:"earnings"`
}

func earningsFromReport(r queries.EarningsReport) EarningsReport {
	out := EarningsReport{
		DeliveryID:     r.OrderID,
		FinalPrice:     r.FinalPrice,
		CommissionRate: r.CommissionRate,
		Net:            r.Net,
		Earnings:       make([]Earning, 0, len(r.Earnings)),
	}
	for _, e := range r.Earnings {
		out.Earnings = append(out.Earnings, Earning{
			ParticipantID: e.ParticipantID,
			CourierID:     e.CourierID,
			Share:         e.Share,
			Amount:        e.Amount,
		})
	}
	return out
}

type Payout struct {
	ParticipantID kernel.UUID  `json:"participant_id"`
	CourierID     kernel.UUID  `json:"courier_id"`
	Amount        kernel.Money `json:"amount"`
	Status        string       `json:"status"`
	Reference     string       `json:"reference,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type Distribution struct {
	DeliveryID kernel.UUID `json:"delivery_id"`
	Payouts    []Payout    `json:"payouts"`
}

func distributionFromResult(r commands.DistributeResult) Distribution {
	out := Distribution{DeliveryID: r.OrderID, Payouts: make([]Payout, 0, len(r.Outcomes))}
	for _, o := range r.Outcomes {
		out.Payouts = append(out.Payouts, Payout{
			ParticipantID: o.ParticipantID,
			CourierID:     o.CourierID,
			Amount:        o.Amount,
			Status:        o.Status,
			Reference:     o.Reference,
			Error:         o.Error,
		})
	}
	return out
}

type Courier struct {
	ID         kernel.UUID `json:"id"`
	Name       string      `json:"name"`
	Vehicle    string      `json:"vehicle"`
	Online     bool        `json:"online"`
	Verified   bool        `json:"verified"`
	Location   *GeoPoint   `json:"location,omitempty"`
	LastSeenAt *time.Time  `json:"last_seen_at,omitempty"`
}

func courierFromDomain(c *courier.Courier) Courier {
	out := Courier{
		ID:         c.ID(),
		Name:       c.Name(),
		Vehicle:    string(c.Vehicle()),
		Online:     c.IsOnline(),
		Verified:   c.IsVerified(),
		LastSeenAt: c.LastSeenAt(),
	}
	if p := c.Position(); p != nil {
		out.Location = &GeoPoint{Lat: p.Lat(), Lng: p.Lng()}
	}
	return out
}

func courierFromView(v queries.CourierView) Courier {
	out := Courier{
		ID:         v.ID,
		Name:       v.Name,
		Vehicle:    v.Vehicle,
		Online:     v.Online,
		Verified:   v.Verified,
		LastSeenAt: v.LastSeenAt,
	}
	if v.Position != nil {
		out.Location = &GeoPoint{Lat: v.Position.Lat(), Lng: v.Position.Lng()}
	}
	return out
}
