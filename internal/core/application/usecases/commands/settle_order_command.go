package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSettleOrderCommandIsNotConstructed = errors.New(
	"SettleOrderCommand must be created via NewSettleOrderCommand constructor",
)

// SettleOrderCommand runs the completion side effects of an order. It is
// issued by the settlement worker, never by a user.
type SettleOrderCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewSettleOrderCommand(orderID kernel.UUID) (SettleOrderCommand, error) {
	if err := requireID("order id", orderID); err != nil {
		return SettleOrderCommand{}, err
	}
	return SettleOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c SettleOrderCommand) Validate() error {
	return c.guard.Validate(ErrSettleOrderCommandIsNotConstructed)
}

func (c SettleOrderCommand) OrderID() kernel.UUID { return c.orderID }
