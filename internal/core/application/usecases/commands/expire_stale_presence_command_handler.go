package commands

import (
	"context"

	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// ExpireStalePresenceCommandHandler flips silent couriers offline in one
// transaction per batch.
type ExpireStalePresenceCommandHandler struct {
	uowFactory CourierUoWFactory
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewExpireStalePresenceCommandHandler(
	uowFactory CourierUoWFactory,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) ExpireStalePresenceCommandHandler {
	return ExpireStalePresenceCommandHandler{uowFactory: uowFactory, clock: clock, logger: nopLogger(logger)}
}

// Handle returns how many couriers went offline.
func (h ExpireStalePresenceCommandHandler) Handle(ctx context.Context, cmd ExpireStalePresenceCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	repo := uow.CourierRepository()
	stale, err := repo.ListStaleOnline(ctx, now.Add(-cmd.MaxSilence()), cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	for _, c := range stale {
		c.GoOffline(now)
		if err = repo.Update(ctx, c); err != nil {
			return 0, err
		}
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	h.logger.Infow("stale_couriers_offline", "count", len(stale))
	return len(stale), nil
}
