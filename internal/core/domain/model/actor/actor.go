// Package actor describes who is calling the dispatch core and how that
// caller relates to a given order.
package actor

import (
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Role is the platform role carried by an authenticated caller.
type Role string

const (
	RoleClient   Role = "client"
	RoleBusiness Role = "business"
	RoleCourier  Role = "courier"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

var knownRoles = map[Role]struct{}{
	RoleClient:   {},
	RoleBusiness: {},
	RoleCourier:  {},
	RoleManager:  {},
	RoleAdmin:    {},
	RoleSystem:   {},
}

// ParseRole normalizes and validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownRoles[r]; !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("unknown role %q", raw))
	}
	return r, nil
}

// Actor is an authenticated caller.
type Actor struct {
	id   kernel.UUID
	role Role
}

// New builds an actor from a validated id and role.
func New(id kernel.UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if _, ok := knownRoles[role]; !ok {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("unknown role %q", role))
	}
	return Actor{id: id, role: role}, nil
}

// System is the actor used by background jobs.
func System() Actor {
	return Actor{id: systemID, role: RoleSystem}
}

var systemID, _ = kernel.UUIDFromString("00000000-0000-4000-8000-000000000001")

func (a Actor) ID() kernel.UUID { return a.id }

func (a Actor) Role() Role { return a.role }

// IsPrivileged reports staff and system actors.
func (a Actor) IsPrivileged() bool {
	return a.role == RoleManager || a.role == RoleAdmin || a.role == RoleSystem
}

// IsCourier reports courier actors.
func (a Actor) IsCourier() bool {
	return a.role == RoleCourier
}

// CanPostOrders reports roles allowed to create delivery requests.
func (a Actor) CanPostOrders() bool {
	return a.role == RoleClient || a.role == RoleBusiness
}

// Validate rejects the zero Actor.
func (a Actor) Validate() error {
	if err := a.id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	return nil
}
