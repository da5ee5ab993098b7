// Package worker consumes the background tasks enqueued by the queue
// adapter.
package worker

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Pusher delivers a notification to the recipient's devices.
type Pusher interface {
	Push(ctx context.Context, n ports.Notification) error
}

// Settler runs the completion side effects of an order.
type Settler interface {
	Handle(ctx context.Context, cmd commands.SettleOrderCommand) error
}

// Consumer routes tasks to their handlers. Returning an error makes asynq
// retry the task; malformed payloads are skipped for good.
type Consumer struct {
	pusher   Pusher
	settler  Settler
	channels map[order.Channel]ports.OTPChannel
	logger   *zap.SugaredLogger
}

func NewConsumer(pusher Pusher, settler Settler, channels map[order.Channel]ports.OTPChannel, logger *zap.SugaredLogger) *Consumer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Consumer{pusher: pusher, settler: settler, channels: channels, logger: logger}
}

// Register installs every handler on mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		return
	}
	mux.HandleFunc(queue.TaskNotification, c.handleNotification)
	mux.HandleFunc(queue.TaskSettlement, c.handleSettlement)
	mux.HandleFunc(queue.TaskOTPSend, c.handleOTPSend)
}

func (c *Consumer) handleNotification(ctx context.Context, task *asynq.Task) error {
	n, err := queue.ParseNotification(task)
	if err != nil {
		c.logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if c.pusher == nil {
		c.logger.Debugw("worker_notification_skip_no_pusher", "kind", string(n.Kind), "order_id", n.OrderID.String())
		return nil
	}
	if err = c.pusher.Push(ctx, n); err != nil {
		c.logger.Warnw("worker_notification_push_failed",
			"kind", string(n.Kind),
			"order_id", n.OrderID.String(),
			"recipient", n.Recipient.String(),
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleSettlement(ctx context.Context, task *asynq.Task) error {
	orderID, err := queue.ParseSettlement(task)
	if err != nil {
		c.logger.Warnw("worker_settlement_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	cmd, err := commands.NewSettleOrderCommand(orderID)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	err = c.settler.Handle(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrObjectNotFound):
		c.logger.Warnw("worker_settlement_skip_order_not_found", "order_id", orderID.String())
		return nil
	default:
		c.logger.Warnw("worker_settlement_failed", "order_id", orderID.String(), "error", err)
		return err
	}
}

func (c *Consumer) handleOTPSend(ctx context.Context, task *asynq.Task) error {
	p, err := queue.ParseOTPSend(task)
	if err != nil {
		c.logger.Warnw("worker_otp_send_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	sender, ok := c.channels[order.Channel(p.Channel)]
	if !ok || sender == nil {
		c.logger.Warnw("worker_otp_send_skip_unknown_channel", "channel", p.Channel)
		return nil
	}
	if err = sender.Send(ctx, p.Destination, p.Message); err != nil {
		c.logger.Warnw("worker_otp_send_failed", "channel", p.Channel, "error", err)
		return err
	}
	return nil
}
