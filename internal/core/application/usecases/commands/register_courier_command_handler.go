package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"go.uber.org/zap"
)

// RegisterCourierCommandHandler persists a new courier profile. Profiles
// start offline; verified profiles become matchable once the courier goes
// online with a position.
type RegisterCourierCommandHandler struct {
	uowFactory CourierUoWFactory
	authz      ports.Authorizer
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewRegisterCourierCommandHandler(
	uowFactory CourierUoWFactory,
	authz ports.Authorizer,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) RegisterCourierCommandHandler {
	return RegisterCourierCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

func (h RegisterCourierCommandHandler) Handle(ctx context.Context, cmd RegisterCourierCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := authorize(h.authz, cmd.Actor(), actor.OpCourierManage, services.ActorRelationships(cmd.Actor())); err != nil {
		return nil, err
	}

	c, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Vehicle(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if cmd.Verified() {
		c.Verify()
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.CourierRepository().Add(ctx, c); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("courier_registered",
		"courier_id", c.ID().String(),
		"vehicle", string(c.Vehicle()),
		"verified", c.IsVerified(),
	)
	return c, nil
}
