package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

func authorize(authz ports.Authorizer, a actor.Actor, op actor.Operation, rels []actor.Relationship) error {
	if authz == nil || !authz.CanPerform(a, op, rels) {
		return errs.NewForbiddenError(string(op), "actor lacks the required role or relationship")
	}
	return nil
}

func requireActor(a actor.Actor) error {
	return a.Validate()
}

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

// outbox sends notifications once the transaction is committed. Failures are
// logged and never reach the caller.
type outbox struct {
	notifier ports.Notifier
	logger   *zap.SugaredLogger
	pending  []ports.Notification
}

func newOutbox(notifier ports.Notifier, logger *zap.SugaredLogger) *outbox {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &outbox{notifier: notifier, logger: logger}
}

func (o *outbox) add(kind ports.NotificationKind, recipient, orderID kernel.UUID, data map[string]string) {
	o.pending = append(o.pending, ports.Notification{
		Kind:      kind,
		Recipient: recipient,
		OrderID:   orderID,
		Data:      data,
	})
}

func (o *outbox) flush(ctx context.Context) {
	if o.notifier == nil {
		o.pending = nil
		return
	}
	for _, n := range o.pending {
		if err := o.notifier.Notify(ctx, n); err != nil {
			o.logger.Warnw("notification_enqueue_failed",
				"kind", string(n.Kind),
				"order_id", n.OrderID.String(),
				"recipient", n.Recipient.String(),
				"error", err,
			)
		}
	}
	o.pending = nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrObjectNotFound)
}

func nopLogger(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}
