package order

import (
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// OpenForBidding moves a pending order into the bidding window.
func (o *Order) OpenForBidding() error {
	if err := o.status.ValidateTransition(Bidding); err != nil {
		return err
	}
	o.status = Bidding
	return nil
}

// AcceptBid attaches the winning courier at the bid price. The order must be
// in the bidding window.
func (o *Order) AcceptBid(courierID kernel.UUID, price kernel.Money, now time.Time) error {
	if o.status != Bidding {
		return ErrNotOpenToOffers
	}
	return o.attachCourier(courierID, price, now)
}

// AssignCourier attaches a courier directly, bypassing open bidding, at the
// proposed price. Used by automatic matching.
func (o *Order) AssignCourier(courierID kernel.UUID, now time.Time) error {
	if o.status != Pending && o.status != Bidding {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("order cannot be assigned in status %s", o.status),
			map[string]any{"status": o.status.String()},
		)
	}
	return o.attachCourier(courierID, o.proposedPrice, now)
}

func (o *Order) attachCourier(courierID kernel.UUID, price kernel.Money, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courier id", err)
	}
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("final price", fmt.Errorf("%s is not greater than 0", price))
	}
	if o.finalPrice != nil {
		return errs.NewConflictError("final price is already set")
	}
	if err := o.status.ValidateTransition(Accepted); err != nil {
		return err
	}

	id := courierID
	o.courierID = &id
	o.finalPrice = &price
	o.acceptedAt = timePtr(now)
	o.status = Accepted
	return nil
}

// TransitionTo drives the status machine towards target. Accepted is only
// reachable through AcceptBid or AssignCourier, cancelled through Cancel.
// Delivered additionally requires the delivery proof gate to be satisfied.
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if err := o.status.ValidateTransition(target); err != nil {
		return err
	}

	switch target {
	case Bidding:
		o.status = Bidding
	case Accepted:
		return errs.NewConflictError("accepted is reached by accepting a bid or assigning a courier")
	case PickedUp:
		o.pickedUpAt = timePtr(now)
		o.status = PickedUp
	case InProgress:
		o.status = InProgress
	case Delivered:
		if !o.DeliveryProofSatisfied() {
			return errs.NewConflictErrorWithDetails(
				"delivery must be confirmed with a code or fallback proof",
				map[string]any{"otp_required": true},
			)
		}
		o.markDelivered(now)
	case Completed:
		o.completedAt = timePtr(now)
		o.status = Completed
	case Cancelled:
		return o.Cancel("", now)
	}
	return nil
}

// Cancel moves the order to cancelled. Delivered and terminal orders cannot
// be cancelled. An assigned courier stays attached for notification.
func (o *Order) Cancel(reason string, now time.Time) error {
	if o.status == Delivered {
		return errs.NewConflictErrorWithDetails(
			"delivered orders cannot be cancelled",
			map[string]any{"status": o.status.String()},
		)
	}
	if err := o.status.ValidateTransition(Cancelled); err != nil {
		return err
	}
	o.cancelledAt = timePtr(now)
	o.cancelReason = reason
	o.status = Cancelled
	return nil
}

func (o *Order) markDelivered(now time.Time) {
	o.deliveredAt = timePtr(now)
	if o.pickedUpAt != nil {
		minutes := int(math.Round(o.deliveredAt.Sub(*o.pickedUpAt).Minutes()))
		o.actualMinutes = &minutes
	}
	o.status = Delivered
}
