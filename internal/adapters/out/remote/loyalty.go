package remote

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

type awardRequest struct {
	ClientID string       `json:"client_id"`
	OrderID  string       `json:"order_id"`
	Amount   kernel.Money `json:"amount"`
}

// Loyalty implements ports.LoyaltyService. The order id doubles as the
// idempotency key on the remote side.
type Loyalty struct {
	c *client
}

func NewLoyalty(cfg Config) (*Loyalty, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Loyalty{c: c}, nil
}

func (l *Loyalty) Award(ctx context.Context, clientID, orderID kernel.UUID, amount kernel.Money) error {
	return l.c.postJSON(ctx, "/awards", awardRequest{
		ClientID: clientID.String(),
		OrderID:  orderID.String(),
		Amount:   amount,
	}, nil)
}
