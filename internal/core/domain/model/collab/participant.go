// Package collab models couriers sharing one collaborative order.
package collab

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrParticipantIsNotConstructed = errors.New("Participant must be created via NewParticipant or RestoreParticipant")
	ErrAlreadyPaid                 = errs.NewConflictError("participant earnings are already paid")
)

var (
	minShare = decimal.Zero
	maxShare = decimal.NewFromInt(100)
)

// Role is a participant's part in the delivery.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleSupport   Role = "support"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RolePrimary, RoleSecondary, RoleSupport:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid participant role", raw))
	}
}

// Status is a participant's progress. Any value may follow any other.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a participant status name.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("participant status", fmt.Errorf("%q is not a valid participant status", raw))
	}
}

// Participant is one courier's stake in a collaborative order.
type Participant struct {
	id          kernel.UUID
	orderID     kernel.UUID
	courierID   kernel.UUID
	role        Role
	share       decimal.Decimal
	status      Status
	joinedAt    time.Time
	acceptedAt  *time.Time
	completedAt *time.Time
	earnings    *kernel.Money
	paidAt      *time.Time
	payoutRef   string

	guard guard.ConstructorGuard
}

// NewParticipant creates a pending participant. Share is a percentage in
// [0, 100].
func NewParticipant(id, orderID, courierID kernel.UUID, role Role, share decimal.Decimal, now time.Time) (*Participant, error) {
	if err := errors.Join(
		requireID("participant id", id),
		requireID("order id", orderID),
		requireID("courier id", courierID),
		validateRole(role),
		ValidateShare(share),
	); err != nil {
		return nil, err
	}
	return &Participant{
		id:        id,
		orderID:   orderID,
		courierID: courierID,
		role:      role,
		share:     share,
		status:    StatusPending,
		joinedAt:  now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Snapshot is the persisted form of a Participant.
type Snapshot struct {
	ID          kernel.UUID
	OrderID     kernel.UUID
	CourierID   kernel.UUID
	Role        Role
	Share       decimal.Decimal
	Status      Status
	JoinedAt    time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	Earnings    *kernel.Money
	PaidAt      *time.Time
	PayoutRef   string
}

// RestoreParticipant rebuilds a participant from storage.
func RestoreParticipant(s Snapshot) (*Participant, error) {
	_, statusErr := ParseStatus(string(s.Status))
	if err := errors.Join(
		requireID("participant id", s.ID),
		requireID("order id", s.OrderID),
		requireID("courier id", s.CourierID),
		validateRole(s.Role),
		ValidateShare(s.Share),
		statusErr,
	); err != nil {
		return nil, err
	}
	return &Participant{
		id:          s.ID,
		orderID:     s.OrderID,
		courierID:   s.CourierID,
		role:        s.Role,
		share:       s.Share,
		status:      s.Status,
		joinedAt:    s.JoinedAt,
		acceptedAt:  s.AcceptedAt,
		completedAt: s.CompletedAt,
		earnings:    s.Earnings,
		paidAt:      s.PaidAt,
		payoutRef:   s.PayoutRef,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (p *Participant) Snapshot() Snapshot {
	return Snapshot{
		ID:          p.id,
		OrderID:     p.orderID,
		CourierID:   p.courierID,
		Role:        p.role,
		Share:       p.share,
		Status:      p.status,
		JoinedAt:    p.joinedAt,
		AcceptedAt:  p.acceptedAt,
		CompletedAt: p.completedAt,
		Earnings:    p.earnings,
		PaidAt:      p.paidAt,
		PayoutRef:   p.payoutRef,
	}
}

func (p *Participant) Validate() error {
	if p == nil {
		return ErrParticipantIsNotConstructed
	}
	return p.guard.Validate(ErrParticipantIsNotConstructed)
}

func (p *Participant) ID() kernel.UUID { return p.id }

func (p *Participant) OrderID() kernel.UUID { return p.orderID }

func (p *Participant) CourierID() kernel.UUID { return p.courierID }

func (p *Participant) Role() Role { return p.role }

func (p *Participant) Share() decimal.Decimal { return p.share }

func (p *Participant) Status() Status { return p.status }

func (p *Participant) JoinedAt() time.Time { return p.joinedAt }

func (p *Participant) AcceptedAt() *time.Time { return p.acceptedAt }

func (p *Participant) CompletedAt() *time.Time { return p.completedAt }

// Earnings is the last computed payout, or nil before distribution.
func (p *Participant) Earnings() *kernel.Money { return p.earnings }

// PaidAt is when the ledger settled the earnings, or nil while unpaid.
func (p *Participant) PaidAt() *time.Time { return p.paidAt }

func (p *Participant) PayoutRef() string { return p.payoutRef }

func (p *Participant) IsPaid() bool { return p.paidAt != nil }

// BelongsTo reports whether the participant is attached to orderID.
func (p *Participant) BelongsTo(orderID kernel.UUID) bool {
	return p.orderID.IsEqual(orderID)
}

// ChangeStatus sets any legal status, stamping accepted/completed times on
// entry.
func (p *Participant) ChangeStatus(status Status, now time.Time) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	t := now.UTC()
	switch status {
	case StatusAccepted:
		p.acceptedAt = &t
	case StatusCompleted:
		p.completedAt = &t
	}
	p.status = status
	return nil
}

// ChangeShare replaces the share percentage.
func (p *Participant) ChangeShare(share decimal.Decimal) error {
	if err := ValidateShare(share); err != nil {
		return err
	}
	p.share = share
	return nil
}

// SetEarnings records the computed payout. A paid participant keeps the
// amount it was paid.
func (p *Participant) SetEarnings(amount kernel.Money) error {
	if p.IsPaid() {
		return ErrAlreadyPaid
	}
	p.earnings = &amount
	return nil
}

// MarkPaid records the ledger reference of a settled payout. A participant
// is paid at most once.
func (p *Participant) MarkPaid(reference string, now time.Time) error {
	if p.IsPaid() {
		return ErrAlreadyPaid
	}
	if p.earnings == nil {
		return errs.NewConflictError("participant has no computed earnings")
	}
	t := now.UTC()
	p.paidAt = &t
	p.payoutRef = reference
	return nil
}

// ValidateShare checks that share is within [0, 100].
func ValidateShare(share decimal.Decimal) error {
	if share.LessThan(minShare) || share.GreaterThan(maxShare) {
		return errs.NewValueIsOutOfRangeError("share percentage", share.String(), 0, 100)
	}
	return nil
}

func validateRole(r Role) error {
	_, err := ParseRole(string(r))
	return err
}

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
