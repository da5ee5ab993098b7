package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// GeoEstimator estimates travel between two stops.
type GeoEstimator interface {
	DistanceAndDuration(ctx context.Context, from, to kernel.Address) (km float64, minutes int, err error)
}

// NotificationKind names a user-facing event.
type NotificationKind string

const (
	NotifyOrderNearby       NotificationKind = "order_nearby"
	NotifyBidPlaced         NotificationKind = "bid_placed"
	NotifyBidAccepted       NotificationKind = "bid_accepted"
	NotifyBidRejected       NotificationKind = "bid_rejected"
	NotifyCounterOffer      NotificationKind = "counter_offer"
	NotifyCounterResolved   NotificationKind = "counter_offer_resolved"
	NotifyCourierAssigned   NotificationKind = "courier_assigned"
	NotifyStatusChanged     NotificationKind = "status_changed"
	NotifyOrderCancelled    NotificationKind = "order_cancelled"
	NotifyEarningsDisbursed NotificationKind = "earnings_disbursed"
)

// Notification is addressed to one user about one order.
type Notification struct {
	Kind      NotificationKind
	Recipient kernel.UUID
	OrderID   kernel.UUID
	Data      map[string]string
}

// Notifier hands notifications to an asynchronous delivery channel. It must
// not block on the end user's device.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SettlementQueue schedules payout and loyalty side effects of a completed
// order. Scheduling the same order twice has no further effect.
type SettlementQueue interface {
	EnqueueSettlement(ctx context.Context, orderID kernel.UUID) error
}

// Receipt is the ledger's acknowledgement of a settlement.
type Receipt struct {
	Reference string
}

// Ledger moves money to couriers.
type Ledger interface {
	Settle(ctx context.Context, orderID kernel.UUID, amounts map[kernel.UUID]kernel.Money) (Receipt, error)
}

// RatingService reports a courier's average rating. ok is false when the
// courier has never been rated.
type RatingService interface {
	AverageFor(ctx context.Context, courierID kernel.UUID) (avg float64, ok bool, err error)
}

// LoyaltyService awards points to clients for completed orders.
type LoyaltyService interface {
	Award(ctx context.Context, clientID, orderID kernel.UUID, amount kernel.Money) error
}

// CommissionProvider returns the platform's cut as a fraction in [0, 1].
type CommissionProvider interface {
	CommissionRate(ctx context.Context, orderType order.Type) (decimal.Decimal, error)
}

// OTPChannel delivers a message to a phone number or an email address.
type OTPChannel interface {
	Send(ctx context.Context, destination, message string) error
}

// Authorizer answers capability questions from the policy table.
type Authorizer interface {
	CanPerform(a actor.Actor, op actor.Operation, rels []actor.Relationship) bool
}

// CodeGenerator produces numeric one-time codes.
type CodeGenerator interface {
	NumericCode(digits int) (string, error)
}

type Clock interface {
	Now() time.Time
}
