package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// UpdateCourierPresenceCommandHandler applies a courier's own online toggle.
type UpdateCourierPresenceCommandHandler struct {
	uowFactory CourierUoWFactory
	authz      ports.Authorizer
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewUpdateCourierPresenceCommandHandler(
	uowFactory CourierUoWFactory,
	authz ports.Authorizer,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) UpdateCourierPresenceCommandHandler {
	return UpdateCourierPresenceCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

func (h UpdateCourierPresenceCommandHandler) Handle(ctx context.Context, cmd UpdateCourierPresenceCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := authorize(h.authz, cmd.Actor(), actor.OpCourierPresence, services.ActorRelationships(cmd.Actor())); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CourierRepository()
	c, err := repo.Get(ctx, cmd.Actor().ID())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if p := cmd.Position(); p != nil {
		c.ReportPosition(*p, now)
	}
	if cmd.Online() {
		c.GoOnline(now)
	} else {
		c.GoOffline(now)
	}

	if err = repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("courier_presence_updated",
		"courier_id", c.ID().String(),
		"online", c.IsOnline(),
		"matchable", c.IsMatchable(),
	)
	return c, nil
}
