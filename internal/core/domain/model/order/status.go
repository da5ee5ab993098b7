package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status int

const (
	// Unknown is the zero value and never persisted.
	Unknown Status = iota
	Pending
	Bidding
	Accepted
	PickedUp
	InProgress
	Delivered
	Completed
	Cancelled
)

var statusNames = map[Status]string{
	Pending:    "pending",
	Bidding:    "bidding",
	Accepted:   "accepted",
	PickedUp:   "picked_up",
	InProgress: "in_progress",
	Delivered:  "delivered",
	Completed:  "completed",
	Cancelled:  "cancelled",
}

// transitions lists every legal forward move. Cancellation is allowed from
// every non-terminal state except delivered.
var transitions = map[Status][]Status{
	Pending:    {Bidding, Accepted, Cancelled},
	Bidding:    {Accepted, Cancelled},
	Accepted:   {PickedUp, Cancelled},
	PickedUp:   {InProgress, Cancelled},
	InProgress: {Delivered, Cancelled},
	Delivered:  {Completed},
}

// ParseStatus maps a wire name such as "picked_up" to its Status.
func ParseStatus(raw string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", raw))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports completed and cancelled.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// IsEditable reports the states in which the owner may still change the request.
func (s Status) IsEditable() bool {
	return s == Pending || s == Bidding
}

// RequiresCourier reports the states in which a courier must be assigned.
func (s Status) RequiresCourier() bool {
	switch s {
	case Accepted, PickedUp, InProgress, Delivered, Completed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether target is directly reachable from s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns a ConflictError when target is the current state
// or is not directly reachable.
func (s Status) ValidateTransition(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if s == target {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("order is already in status %s", s),
			map[string]any{"status": s.String()},
		)
	}
	if !s.CanTransitionTo(target) {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("cannot move order from %s to %s", s, target),
			map[string]any{"status": s.String(), "target": target.String()},
		)
	}
	return nil
}

// ValidateCourierPresence checks the courier invariant for a restored order.
// A cancelled order may keep the courier it had before cancellation.
func (s Status) ValidateCourierPresence(hasCourier bool) error {
	if hasCourier && !s.RequiresCourier() && s != Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"courier",
			fmt.Errorf("%s orders cannot have a courier", s),
		)
	}
	if !hasCourier && s.RequiresCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"courier",
			fmt.Errorf("%s orders must have a courier", s),
		)
	}
	return nil
}
