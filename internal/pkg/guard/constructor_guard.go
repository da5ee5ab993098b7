// Package guard holds the constructor guard embedded by commands, queries and
// value objects so that zero values are rejected before they reach a handler.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate on a zero value when the
// caller passes no specific error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the embedding struct was built by its
// constructor. The zero value is "not constructed".
//
// Example:
//
//	type PlaceBidCommand struct {
//	    orderID kernel.UUID
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c PlaceBidCommand) Validate() error {
//	    return c.guard.Validate(ErrPlaceBidCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is
// nil) if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
