// Package queue enqueues background work on Redis through asynq: user
// notifications, completion settlement and delivery code messages.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// ErrDisabled is returned by senders that must not silently drop work.
var ErrDisabled = errors.New("queue is disabled")

// Config locates the Redis broker. A disabled queue accepts notifications and
// drops them.
type Config struct {
	Enabled     bool
	Host        string
	Port        int
	Password    string
	DB          int
	Concurrency int
	MaxRetry    int
	Retention   time.Duration
}

// Client wraps an asynq client.
type Client struct {
	client    *asynq.Client
	enabled   bool
	maxRetry  int
	retention time.Duration
	logger    *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if !cfg.Enabled {
		return &Client{logger: logger}
	}
	return &Client{
		client:    asynq.NewClient(RedisOpt(cfg)),
		enabled:   true,
		maxRetry:  cfg.MaxRetry,
		retention: cfg.Retention,
		logger:    logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Notify implements ports.Notifier.
func (c *Client) Notify(ctx context.Context, n ports.Notification) error {
	if !c.Enabled() {
		c.logger.Debugw("notification_dropped_queue_disabled", "kind", string(n.Kind), "order_id", n.OrderID.String())
		return nil
	}
	task, err := NewNotificationTask(n)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueSettlement implements ports.SettlementQueue. The task id makes a
// second enqueue of the same order a no-op.
func (c *Client) EnqueueSettlement(ctx context.Context, orderID kernel.UUID) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	task, err := NewSettlementTask(orderID)
	if err != nil {
		return err
	}
	err = c.enqueue(ctx, task,
		asynq.Queue(QueueCritical),
		asynq.TaskID(SettlementTaskID(orderID)),
		asynq.Retention(c.retention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		c.logger.Infow("settlement_already_enqueued", "order_id", orderID.String())
		return nil
	}
	return err
}

// OTPChannel returns a ports.OTPChannel that hands messages for channel to
// the worker.
func (c *Client) OTPChannel(channel order.Channel) ports.OTPChannel {
	return otpSender{client: c, channel: channel}
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if c.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.maxRetry))
	}
	_, err := c.client.EnqueueContext(ctx, task, opts...)
	return err
}

type otpSender struct {
	client  *Client
	channel order.Channel
}

func (s otpSender) Send(ctx context.Context, destination, message string) error {
	if !s.client.Enabled() {
		return ErrDisabled
	}
	task, err := NewOTPSendTask(s.channel, destination, message)
	if err != nil {
		return err
	}
	// Codes expire within minutes, so retries stay short.
	return s.client.enqueue(ctx, task, asynq.Queue(QueueCritical), asynq.MaxRetry(2), asynq.Timeout(30*time.Second))
}

// ServerConfig builds the worker side configuration.
func ServerConfig(cfg Config) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	return RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
	}
}

func RedisOpt(cfg Config) asynq.RedisClientOpt {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
