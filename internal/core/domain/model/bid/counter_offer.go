package bid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// CounterStatus is the state of a counter offer.
type CounterStatus string

const (
	CounterPending  CounterStatus = "pending"
	CounterAccepted CounterStatus = "accepted"
	CounterDeclined CounterStatus = "declined"
)

const maxCounterMessageLen = 500

// CounterOffer is an owner's price proposal on a pending bid. Resolving it
// is a single-record change: accepting reprices the bid, declining only
// records the answer.
type CounterOffer struct {
	id         kernel.UUID
	orderID    kernel.UUID
	bidID      kernel.UUID
	price      kernel.Money
	message    string
	status     CounterStatus
	createdAt  time.Time
	resolvedAt *time.Time
}

// NewCounterOffer creates a pending counter offer on b.
func NewCounterOffer(id kernel.UUID, b *Bid, price kernel.Money, message string, now time.Time) (*CounterOffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !b.IsPending() {
		return nil, b.notPending()
	}
	message = strings.TrimSpace(message)
	if err := errors.Join(
		validateID("counter offer id", id),
		validatePrice(price),
		validateMessage(message),
	); err != nil {
		return nil, err
	}
	return &CounterOffer{
		id:        id,
		orderID:   b.orderID,
		bidID:     b.id,
		price:     price,
		message:   message,
		status:    CounterPending,
		createdAt: now.UTC(),
	}, nil
}

// CounterSnapshot is the persisted form of a CounterOffer.
type CounterSnapshot struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	BidID      kernel.UUID
	Price      kernel.Money
	Message    string
	Status     CounterStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// RestoreCounterOffer rebuilds a counter offer from storage.
func RestoreCounterOffer(s CounterSnapshot) (*CounterOffer, error) {
	switch s.Status {
	case CounterPending, CounterAccepted, CounterDeclined:
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("counter offer status", fmt.Errorf("%q is not valid", s.Status))
	}
	if err := errors.Join(
		validateID("counter offer id", s.ID),
		validateID("order id", s.OrderID),
		validateID("bid id", s.BidID),
		validatePrice(s.Price),
	); err != nil {
		return nil, err
	}
	return &CounterOffer{
		id:         s.ID,
		orderID:    s.OrderID,
		bidID:      s.BidID,
		price:      s.Price,
		message:    s.Message,
		status:     s.Status,
		createdAt:  s.CreatedAt,
		resolvedAt: s.ResolvedAt,
	}, nil
}

func (c *CounterOffer) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		ID:         c.id,
		OrderID:    c.orderID,
		BidID:      c.bidID,
		Price:      c.price,
		Message:    c.message,
		Status:     c.status,
		CreatedAt:  c.createdAt,
		ResolvedAt: c.resolvedAt,
	}
}

func (c *CounterOffer) ID() kernel.UUID { return c.id }

func (c *CounterOffer) OrderID() kernel.UUID { return c.orderID }

func (c *CounterOffer) BidID() kernel.UUID { return c.bidID }

func (c *CounterOffer) Price() kernel.Money { return c.price }

func (c *CounterOffer) Message() string { return c.message }

func (c *CounterOffer) Status() CounterStatus { return c.status }

func (c *CounterOffer) CreatedAt() time.Time { return c.createdAt }

func (c *CounterOffer) ResolvedAt() *time.Time { return c.resolvedAt }

// Accept resolves the counter offer in the courier's favour and reprices b.
func (c *CounterOffer) Accept(b *Bid, now time.Time) error {
	if err := c.checkResolvable(b); err != nil {
		return err
	}
	if err := b.Reprice(c.price, now); err != nil {
		return err
	}
	c.resolve(CounterAccepted, now)
	return nil
}

// Decline records that the courier kept the original price.
func (c *CounterOffer) Decline(b *Bid, now time.Time) error {
	if err := c.checkResolvable(b); err != nil {
		return err
	}
	c.resolve(CounterDeclined, now)
	return nil
}

func (c *CounterOffer) checkResolvable(b *Bid) error {
	if c.status != CounterPending {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("counter offer is already %s", c.status),
			map[string]any{"counter_status": string(c.status)},
		)
	}
	if b == nil || !b.id.IsEqual(c.bidID) {
		return errs.NewObjectNotFoundError("bid", c.bidID.String())
	}
	if !b.IsPending() {
		return b.notPending()
	}
	return nil
}

func (c *CounterOffer) resolve(status CounterStatus, now time.Time) {
	t := now.UTC()
	c.status = status
	c.resolvedAt = &t
}

func validateMessage(message string) error {
	if len(message) > maxCounterMessageLen {
		return errs.NewValueIsOutOfRangeError("message length", len(message), 0, maxCounterMessageLen)
	}
	return nil
}
