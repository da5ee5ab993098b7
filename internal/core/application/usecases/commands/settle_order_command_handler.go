package commands

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettleOrderCommandHandler pays the courier of a completed order and awards
// loyalty to the client. Collaborative payouts go through Distribute instead.
// Errors are returned so the queue retries the task; the ledger and loyalty
// services deduplicate by order.
type SettleOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	commission ports.CommissionProvider
	ledger     ports.Ledger
	loyalty    ports.LoyaltyService
	notifier   ports.Notifier
	logger     *zap.SugaredLogger
}

func NewSettleOrderCommandHandler(
	uowFactory OrderUoWFactory,
	commission ports.CommissionProvider,
	ledger ports.Ledger,
	loyalty ports.LoyaltyService,
	notifier ports.Notifier,
	logger *zap.SugaredLogger,
) SettleOrderCommandHandler {
	return SettleOrderCommandHandler{
		uowFactory: uowFactory,
		commission: commission,
		ledger:     ledger,
		loyalty:    loyalty,
		notifier:   notifier,
		logger:     nopLogger(logger),
	}
}

func (h SettleOrderCommandHandler) Handle(ctx context.Context, cmd SettleOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if o.Status() != order.Completed {
		h.logger.Infow("settlement_skipped", "order_id", o.ID().String(), "status", o.Status().String())
		return nil
	}
	final := o.FinalPrice()
	if final == nil {
		return fmt.Errorf("settle order %s: no final price", o.ID())
	}

	if o.Type() != order.TypeCollaborative && o.CourierID() != nil {
		if err = h.payCourier(ctx, o, *final); err != nil {
			return err
		}
	}

	if err = h.loyalty.Award(ctx, o.ClientID(), o.ID(), *final); err != nil {
		return fmt.Errorf("award loyalty for order %s: %w", o.ID(), err)
	}

	h.logger.Infow("order_settled", "order_id", o.ID().String(), "final_price", final.String())
	return nil
}

func (h SettleOrderCommandHandler) payCourier(ctx context.Context, o *order.Order, final kernel.Money) error {
	rate, err := h.commission.CommissionRate(ctx, o.Type())
	if err != nil {
		return fmt.Errorf("commission rate for order %s: %w", o.ID(), err)
	}
	net := final.MulRate(decimal.NewFromInt(1).Sub(rate))
	courierID := *o.CourierID()

	receipt, err := h.ledger.Settle(ctx, o.ID(), map[kernel.UUID]kernel.Money{courierID: net})
	if err != nil {
		return fmt.Errorf("settle order %s: %w", o.ID(), err)
	}

	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyEarningsDisbursed, courierID, o.ID(), map[string]string{
		"amount":    net.String(),
		"reference": receipt.Reference,
	})
	box.flush(ctx)
	return nil
}
