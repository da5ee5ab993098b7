package queries

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

// EarningsReport is the preview of a collaborative payout.
type EarningsReport struct {
	OrderID        kernel.UUID
	FinalPrice     kernel.Money
	CommissionRate decimal.Decimal
	Net            kernel.Money
	Earnings       []services.Earning
}

// ComputeEarningsQueryHandler previews the split without persisting it.
type ComputeEarningsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
	commission ports.CommissionProvider
	splitter   services.EarningsSplitter
}

func NewComputeEarningsQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	authz ports.Authorizer,
	commission ports.CommissionProvider,
) ComputeEarningsQueryHandler {
	return ComputeEarningsQueryHandler{
		uowFactory: uowFactory,
		authz:      authz,
		commission: commission,
		splitter:   services.NewEarningsSplitter(),
	}
}

func (h ComputeEarningsQueryHandler) Handle(ctx context.Context, query OrderScopedQuery) (EarningsReport, error) {
	if err := query.Validate(); err != nil {
		return EarningsReport{}, err
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return EarningsReport{}, err
	}
	participants, err := uow.ParticipantRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return EarningsReport{}, err
	}
	facts := services.OrderFacts{IsParticipant: includesCourier(participants, query.Actor())}
	if err = authorize(h.authz, query.Actor(), actor.OpCollabEarnings, services.Relationships(query.Actor(), o, facts)); err != nil {
		return EarningsReport{}, err
	}

	rate, err := h.commission.CommissionRate(ctx, o.Type())
	if err != nil {
		return EarningsReport{}, err
	}
	earnings, err := h.splitter.Split(o, rate, participants)
	if err != nil {
		return EarningsReport{}, err
	}

	final := *o.FinalPrice()
	return EarningsReport{
		OrderID:        o.ID(),
		FinalPrice:     final,
		CommissionRate: rate,
		Net:            final.MulRate(decimal.NewFromInt(1).Sub(rate)),
		Earnings:       earnings,
	}, nil
}
