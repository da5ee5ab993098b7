package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrExpireStalePresenceCommandIsNotConstructed = errors.New(
	"ExpireStalePresenceCommand must be created via NewExpireStalePresenceCommand constructor",
)

// ExpireStalePresenceCommand takes couriers offline once they stop
// reporting, so matching never offers an order to a closed app.
type ExpireStalePresenceCommand struct {
	maxSilence time.Duration
	batchSize  int

	guard guard.ConstructorGuard
}

func NewExpireStalePresenceCommand(maxSilence time.Duration, batchSize int) (ExpireStalePresenceCommand, error) {
	if maxSilence <= 0 {
		return ExpireStalePresenceCommand{}, errs.NewValueIsOutOfRangeError("max silence", maxSilence, "1ns", "unbounded")
	}
	return ExpireStalePresenceCommand{
		maxSilence: maxSilence,
		batchSize:  max(batchSize, 1),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireStalePresenceCommand) Validate() error {
	return c.guard.Validate(ErrExpireStalePresenceCommandIsNotConstructed)
}

func (c ExpireStalePresenceCommand) MaxSilence() time.Duration { return c.maxSilence }

func (c ExpireStalePresenceCommand) BatchSize() int { return c.batchSize }
