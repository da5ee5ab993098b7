package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order did not come from
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrNotOpenToOffers is returned when bidding on or accepting a bid of an
	// order that has left the bidding window.
	ErrNotOpenToOffers = errs.NewConflictError("order is not open to offers")
)

// Order is the aggregate root of a delivery request.
//
// Invariants maintained by every method:
//   - courierID is set iff status requires a courier; a cancelled order keeps
//     the courier it had when it was cancelled
//   - finalPrice is set exactly once, when a courier is accepted
//   - proposedPrice is strictly positive
//   - version grows by one on every persisted update
type Order struct {
	id       kernel.UUID
	clientID kernel.UUID

	courierID *kernel.UUID

	pickup   kernel.Address
	delivery kernel.Address
	pkg      PackageDetails

	proposedPrice kernel.Money
	finalPrice    *kernel.Money
	orderType     Type
	status        Status

	requiresOTP bool
	otp         OTP

	createdAt    time.Time
	acceptedAt   *time.Time
	pickedUpAt   *time.Time
	deliveredAt  *time.Time
	completedAt  *time.Time
	cancelledAt  *time.Time
	cancelReason string

	distanceKm       *float64
	estimatedMinutes *int
	actualMinutes    *int

	version int

	guard guard.ConstructorGuard
}

// Draft is what a client submits to create an order.
type Draft struct {
	Pickup        kernel.Address
	Delivery      kernel.Address
	Package       PackageDetails
	ProposedPrice kernel.Money
	Type          Type
	// RequiresOTP overrides the default, which is to require a code whenever
	// the delivery stop has a contact channel.
	RequiresOTP *bool
}

// NewOrder creates an order in the initial status of its type.
func NewOrder(id, clientID kernel.UUID, draft Draft, now time.Time) (*Order, error) {
	o := &Order{
		guard:     guard.NewConstructorGuard(),
		createdAt: now.UTC(),
		version:   1,
	}

	if err := errors.Join(
		o.setID(id),
		o.setClientID(clientID),
		o.setAddresses(draft.Pickup, draft.Delivery),
		o.setProposedPrice(draft.ProposedPrice),
		o.setType(draft.Type),
	); err != nil {
		return nil, err
	}

	o.pkg = draft.Package
	o.status = o.orderType.InitialStatus()
	o.requiresOTP = o.delivery.HasContactChannel()
	if draft.RequiresOTP != nil {
		o.requiresOTP = *draft.RequiresOTP
	}

	return o, nil
}

// Validate checks that the order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }

func (o *Order) ClientID() kernel.UUID { return o.clientID }

// CourierID returns a copy of the assigned courier id, or nil.
func (o *Order) CourierID() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

func (o *Order) Pickup() kernel.Address { return o.pickup }

func (o *Order) Delivery() kernel.Address { return o.delivery }

func (o *Order) Package() PackageDetails { return o.pkg }

func (o *Order) ProposedPrice() kernel.Money { return o.proposedPrice }

// FinalPrice returns the accepted price, or nil before acceptance.
func (o *Order) FinalPrice() *kernel.Money {
	if o.finalPrice == nil {
		return nil
	}
	p := *o.finalPrice
	return &p
}

func (o *Order) Type() Type { return o.orderType }

func (o *Order) Status() Status { return o.status }

func (o *Order) RequiresOTP() bool { return o.requiresOTP }

func (o *Order) OTP() OTP { return o.otp }

func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) AcceptedAt() *time.Time { return copyTime(o.acceptedAt) }

func (o *Order) PickedUpAt() *time.Time { return copyTime(o.pickedUpAt) }

func (o *Order) DeliveredAt() *time.Time { return copyTime(o.deliveredAt) }

func (o *Order) CompletedAt() *time.Time { return copyTime(o.completedAt) }

func (o *Order) CancelledAt() *time.Time { return copyTime(o.cancelledAt) }

func (o *Order) CancelReason() string { return o.cancelReason }

// DistanceKm returns the estimated pickup-to-delivery distance, if known.
func (o *Order) DistanceKm() *float64 {
	if o.distanceKm == nil {
		return nil
	}
	d := *o.distanceKm
	return &d
}

// EstimatedMinutes returns the estimated trip duration, if known.
func (o *Order) EstimatedMinutes() *int { return copyInt(o.estimatedMinutes) }

// ActualMinutes returns the measured pickup-to-delivery duration.
func (o *Order) ActualMinutes() *int { return copyInt(o.actualMinutes) }

// Version is the optimistic concurrency token of the persisted row.
func (o *Order) Version() int { return o.version }

// AdvanceVersion is called by the repository after a successful update.
func (o *Order) AdvanceVersion() { o.version++ }

// IsOwnedBy reports whether id is the client who posted the order.
func (o *Order) IsOwnedBy(id kernel.UUID) bool {
	return o.clientID.IsEqual(id)
}

// IsAssignedTo reports whether id is the courier currently attached.
func (o *Order) IsAssignedTo(id kernel.UUID) bool {
	return o.courierID != nil && o.courierID.IsEqual(id)
}

// SetEstimate records distance and duration reported by the geo estimator.
func (o *Order) SetEstimate(distanceKm float64, minutes int) error {
	if distanceKm < 0 {
		return errs.NewValueIsOutOfRangeError("distance", distanceKm, 0, "unbounded")
	}
	if minutes < 0 {
		return errs.NewValueIsOutOfRangeError("duration", minutes, 0, "unbounded")
	}
	o.distanceKm = &distanceKm
	o.estimatedMinutes = &minutes
	return nil
}

// Patch is a partial update of an editable order. Nil fields are left as is.
type Patch struct {
	Pickup        *kernel.Address
	Delivery      *kernel.Address
	Package       *PackageDetails
	ProposedPrice *kernel.Money
	RequiresOTP   *bool
}

// Update applies patch while the order is pending or bidding. It reports
// whether either stop moved, in which case the previous estimate is dropped
// and the caller should ask the estimator again.
func (o *Order) Update(patch Patch) (bool, error) {
	if !o.status.IsEditable() {
		return false, errs.NewConflictErrorWithDetails(
			"order can only be edited while pending or bidding",
			map[string]any{"status": o.status.String()},
		)
	}

	pickup, delivery := o.pickup, o.delivery
	if patch.Pickup != nil {
		pickup = *patch.Pickup
	}
	if patch.Delivery != nil {
		delivery = *patch.Delivery
	}
	moved := !pickup.SameGeography(o.pickup) || !delivery.SameGeography(o.delivery)

	if err := o.setAddresses(pickup, delivery); err != nil {
		return false, err
	}
	if patch.ProposedPrice != nil {
		if err := o.setProposedPrice(*patch.ProposedPrice); err != nil {
			return false, err
		}
	}
	if patch.Package != nil {
		o.pkg = *patch.Package
	}
	if patch.RequiresOTP != nil {
		o.requiresOTP = *patch.RequiresOTP
	}

	if moved {
		o.distanceKm = nil
		o.estimatedMinutes = nil
	}
	return moved, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order id", err)
	}
	o.id = id
	return nil
}

func (o *Order) setClientID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("client id", err)
	}
	o.clientID = id
	return nil
}

func (o *Order) setAddresses(pickup, delivery kernel.Address) error {
	var problems []error
	if pickup.Line() == "" {
		problems = append(problems, errs.NewValueIsRequiredError("pickup address"))
	}
	if delivery.Line() == "" {
		problems = append(problems, errs.NewValueIsRequiredError("delivery address"))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	o.pickup = pickup
	o.delivery = delivery
	return nil
}

func (o *Order) setProposedPrice(price kernel.Money) error {
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("proposed price", fmt.Errorf("%s is not greater than 0", price))
	}
	o.proposedPrice = price
	return nil
}

func (o *Order) setType(t Type) error {
	if t == "" {
		t = TypeStandard
	}
	if err := t.Validate(); err != nil {
		return err
	}
	o.orderType = t
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func timePtr(t time.Time) *time.Time {
	v := t.UTC()
	return &v
}
