package remote

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

type payout struct {
	CourierID string       `json:"courier_id"`
	Amount    kernel.Money `json:"amount"`
}

type settleRequest struct {
	OrderID string   `json:"order_id"`
	Payouts []payout `json:"payouts"`
}

type settleResponse struct {
	Reference string `json:"reference"`
}

// Ledger implements ports.Ledger.
type Ledger struct {
	c *client
}

func NewLedger(cfg Config) (*Ledger, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Ledger{c: c}, nil
}

func (l *Ledger) Settle(ctx context.Context, orderID kernel.UUID, amounts map[kernel.UUID]kernel.Money) (ports.Receipt, error) {
	req := settleRequest{OrderID: orderID.String(), Payouts: make([]payout, 0, len(amounts))}
	for courierID, amount := range amounts {
		req.Payouts = append(req.Payouts, payout{CourierID: courierID.String(), Amount: amount})
	}

	var resp settleResponse
	if err := l.c.postJSON(ctx, "/settlements", req, &resp); err != nil {
		return ports.Receipt{}, err
	}
	if resp.Reference == "" {
		return ports.Receipt{}, fmt.Errorf("%w: empty settlement reference", ErrResponseInvalid)
	}
	return ports.Receipt{Reference: resp.Reference}, nil
}
