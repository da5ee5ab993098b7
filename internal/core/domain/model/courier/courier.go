package courier

import (
	"errors"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const maxNameLength = 120

var (
	ErrNameIsRequired          = errs.NewValueIsRequiredError("name")
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier")
)

// Courier is the courier profile aggregate.
type Courier struct {
	id         kernel.UUID
	name       string
	vehicle    order.VehicleClass
	online     bool
	verified   bool
	position   *kernel.GeoPoint
	lastSeenAt *time.Time
	createdAt  time.Time

	guard guard.ConstructorGuard
}

// NewCourier registers an offline, unverified courier without a position.
func NewCourier(id kernel.UUID, name string, vehicle order.VehicleClass, now time.Time) (*Courier, error) {
	c := &Courier{
		createdAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}
	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setVehicle(vehicle),
	); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot is the persisted form of a Courier.
type Snapshot struct {
	ID         kernel.UUID
	Name       string
	Vehicle    order.VehicleClass
	Online     bool
	Verified   bool
	Position   *kernel.GeoPoint
	LastSeenAt *time.Time
	CreatedAt  time.Time
}

// RestoreCourier rebuilds a courier from storage.
func RestoreCourier(s Snapshot) (*Courier, error) {
	c := &Courier{
		online:     s.Online,
		verified:   s.Verified,
		position:   s.Position,
		lastSeenAt: s.LastSeenAt,
		createdAt:  s.CreatedAt,
		guard:      guard.NewConstructorGuard(),
	}
	if err := errors.Join(
		c.setID(s.ID),
		c.setName(s.Name),
		c.setVehicle(s.Vehicle),
	); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Courier) Snapshot() Snapshot {
	return Snapshot{
		ID:         c.id,
		Name:       c.name,
		Vehicle:    c.vehicle,
		Online:     c.online,
		Verified:   c.verified,
		Position:   c.Position(),
		LastSeenAt: c.LastSeenAt(),
		CreatedAt:  c.createdAt,
	}
}

func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) ID() kernel.UUID { return c.id }

func (c *Courier) Name() string { return c.name }

func (c *Courier) Vehicle() order.VehicleClass { return c.vehicle }

func (c *Courier) IsOnline() bool { return c.online }

func (c *Courier) IsVerified() bool { return c.verified }

func (c *Courier) CreatedAt() time.Time { return c.createdAt }

// Position returns a copy of the last reported position, or nil.
func (c *Courier) Position() *kernel.GeoPoint {
	if c.position == nil {
		return nil
	}
	p := *c.position
	return &p
}

func (c *Courier) LastSeenAt() *time.Time {
	if c.lastSeenAt == nil {
		return nil
	}
	t := *c.lastSeenAt
	return &t
}

// IsMatchable reports whether the courier can be offered work right now.
func (c *Courier) IsMatchable() bool {
	return c.online && c.verified && c.position != nil
}

// CanCarry reports whether the courier's vehicle is large enough. A courier
// with no declared vehicle only satisfies an empty requirement.
func (c *Courier) CanCarry(required order.VehicleClass) bool {
	return c.vehicle.Satisfies(required)
}

func (c *Courier) GoOnline(now time.Time) {
	c.online = true
	c.touch(now)
}

func (c *Courier) GoOffline(now time.Time) {
	c.online = false
	c.touch(now)
}

func (c *Courier) Verify() { c.verified = true }

// ReportPosition records where the courier is.
func (c *Courier) ReportPosition(p kernel.GeoPoint, now time.Time) {
	c.position = &p
	c.touch(now)
}

func (c *Courier) touch(now time.Time) {
	t := now.UTC()
	c.lastSeenAt = &t
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courier id", err)
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	if len([]rune(name)) > maxNameLength {
		return errs.NewValueIsOutOfRangeError("name length", len([]rune(name)), 1, maxNameLength)
	}
	c.name = name
	return nil
}

func (c *Courier) setVehicle(v order.VehicleClass) error {
	if err := v.Validate(); err != nil {
		return err
	}
	c.vehicle = v
	return nil
}

// Stats is a courier's delivery history as seen by scoring.
type Stats struct {
	Total     int
	Completed int
	Recent7d  int
}

// CompletionRate is completed over total, zero when there is no history.
func (s Stats) CompletionRate() float64 {
	total := s.Total
	if total < 1 {
		total = 1
	}
	return float64(s.Completed) / float64(total)
}
