package remote

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

type messageRequest struct {
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
	Body        string `json:"body"`
}

type pushRequest struct {
	Recipient string            `json:"recipient"`
	Kind      string            `json:"kind"`
	OrderID   string            `json:"order_id"`
	Data      map[string]string `json:"data,omitempty"`
}

// Gateway delivers text messages and push notifications to end users.
type Gateway struct {
	c *client
}

func NewGateway(cfg Config) (*Gateway, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Gateway{c: c}, nil
}

// Channel returns a ports.OTPChannel that sends through the gateway.
func (g *Gateway) Channel(channel order.Channel) ports.OTPChannel {
	return gatewayChannel{g: g, channel: channel}
}

// Send delivers one message on channel.
func (g *Gateway) Send(ctx context.Context, channel order.Channel, destination, body string) error {
	return g.c.postJSON(ctx, "/messages", messageRequest{
		Channel:     string(channel),
		Destination: destination,
		Body:        body,
	}, nil)
}

// Push forwards a notification to the recipient's devices.
func (g *Gateway) Push(ctx context.Context, n ports.Notification) error {
	return g.c.postJSON(ctx, "/push", pushRequest{
		Recipient: n.Recipient.String(),
		Kind:      string(n.Kind),
		OrderID:   n.OrderID.String(),
		Data:      n.Data,
	}, nil)
}

type gatewayChannel struct {
	g       *Gateway
	channel order.Channel
}

func (c gatewayChannel) Send(ctx context.Context, destination, message string) error {
	return c.g.Send(ctx, c.channel, destination, message)
}
