// Package bid models couriers' priced offers on an order and the counter
// offers an owner can make on them.
package bid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrBidIsNotConstructed is returned for a Bid built without a constructor.
var ErrBidIsNotConstructed = errors.New("Bid must be created via NewBid or RestoreBid")

// Status is the state of one bid.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// ParseStatus validates a bid status name.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusExpired:
		return s, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("bid status", fmt.Errorf("%q is not a valid bid status", raw))
	}
}

// Bid is one courier's offer on one order. It is immutable once it leaves
// pending.
type Bid struct {
	id               kernel.UUID
	orderID          kernel.UUID
	courierID        kernel.UUID
	price            kernel.Money
	proposedPickup   *time.Time
	proposedDelivery *time.Time
	status           Status
	createdAt        time.Time
	updatedAt        time.Time

	guard guard.ConstructorGuard
}

// Times are the optional pickup and delivery times a courier proposes.
type Times struct {
	Pickup   *time.Time
	Delivery *time.Time
}

// NewBid creates a pending bid. Price must be positive and a proposed
// delivery time, when both are given, must not precede the pickup time.
func NewBid(id, orderID, courierID kernel.UUID, price kernel.Money, times Times, now time.Time) (*Bid, error) {
	b := &Bid{
		guard:     guard.NewConstructorGuard(),
		status:    StatusPending,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
	}
	if err := errors.Join(
		validateID("bid id", id),
		validateID("order id", orderID),
		validateID("courier id", courierID),
		validatePrice(price),
		validateTimes(times),
	); err != nil {
		return nil, err
	}
	b.id, b.orderID, b.courierID, b.price = id, orderID, courierID, price
	b.proposedPickup, b.proposedDelivery = times.Pickup, times.Delivery
	return b, nil
}

// Snapshot is the persisted form of a Bid.
type Snapshot struct {
	ID               kernel.UUID
	OrderID          kernel.UUID
	CourierID        kernel.UUID
	Price            kernel.Money
	ProposedPickup   *time.Time
	ProposedDelivery *time.Time
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RestoreBid rebuilds a bid from storage.
func RestoreBid(s Snapshot) (*Bid, error) {
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return nil, err
	}
	if err := errors.Join(
		validateID("bid id", s.ID),
		validateID("order id", s.OrderID),
		validateID("courier id", s.CourierID),
		validatePrice(s.Price),
	); err != nil {
		return nil, err
	}
	return &Bid{
		id:               s.ID,
		orderID:          s.OrderID,
		courierID:        s.CourierID,
		price:            s.Price,
		proposedPickup:   s.ProposedPickup,
		proposedDelivery: s.ProposedDelivery,
		status:           s.Status,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (b *Bid) Snapshot() Snapshot {
	return Snapshot{
		ID:               b.id,
		OrderID:          b.orderID,
		CourierID:        b.courierID,
		Price:            b.price,
		ProposedPickup:   b.proposedPickup,
		ProposedDelivery: b.proposedDelivery,
		Status:           b.status,
		CreatedAt:        b.createdAt,
		UpdatedAt:        b.updatedAt,
	}
}

func (b *Bid) Validate() error {
	if b == nil {
		return ErrBidIsNotConstructed
	}
	return b.guard.Validate(ErrBidIsNotConstructed)
}

func (b *Bid) ID() kernel.UUID { return b.id }
func (b *Bid) OrderID() kernel.UUID { return b.orderID }
func (b *Bid) CourierID() kernel.UUID { return b.courierID }
func (b *Bid) Price() kernel.Money { return b.price }
func (b *Bid) ProposedPickup() *time.Time { return b.proposedPickup }
func (b *Bid) ProposedDelivery() *time.Time { return b.proposedDelivery }
func (b *Bid) Status() Status { return b.status }
func (b *Bid) CreatedAt() time.Time { return b.createdAt }
func (b *Bid) UpdatedAt() time.Time { return b.updatedAt }
func (b *Bid) IsPending() bool { return b.status == StatusPending }
func (b *Bid) BelongsTo(orderID kernel.UUID) bool { return b.orderID.IsEqual(orderID) }

// Accept marks the bid as the winner.
func (b *Bid) Accept(now time.Time) error {
	return b.settle(StatusAccepted, now)
}

// Reject marks the bid as losing to a sibling.
func (b *Bid) Reject(now time.Time) error {
	return b.settle(StatusRejected, now)
}

// Expire closes a pending bid whose order left the bidding window without
// choosing it, for example on cancellation.
func (b *Bid) Expire(now time.Time) error {
	return b.settle(StatusExpired, now)
}

// Reprice applies an accepted counter offer. The bid stays pending.
func (b *Bid) Reprice(price kernel.Money, now time.Time) error {
	if !b.IsPending() {
		return b.notPending()
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	b.price = price
	b.updatedAt = now.UTC()
	return nil
}

func (b *Bid) settle(target Status, now time.Time) error {
	if !b.IsPending() {
		return b.notPending()
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

func (b *Bid) notPending() error {
	return errs.NewConflictErrorWithDetails(
		fmt.Sprintf("bid is %s, only pending bids can change", b.status),
		map[string]any{"bid_status": string(b.status)},
	)
}

func validateID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

func validatePrice(price kernel.Money) error {
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%s is not greater than 0", price))
	}
	return nil
}

func validateTimes(t Times) error {
	if t.Pickup != nil && t.Delivery != nil && t.Delivery.Before(*t.Pickup) {
		return errs.NewValueIsInvalidErrorWithCause("proposed times", errors.New("delivery precedes pickup"))
	}
	return nil
}
