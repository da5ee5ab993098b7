package queries

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// ListParticipantsQueryHandler lists the couriers of a collaborative order.
type ListParticipantsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	authz      ports.Authorizer
}

func NewListParticipantsQueryHandler(uowFactory ports.UnitOfWorkFactory, authz ports.Authorizer) ListParticipantsQueryHandler {
	return ListParticipantsQueryHandler{uowFactory: uowFactory, authz: authz}
}

func (h ListParticipantsQueryHandler) Handle(ctx context.Context, query OrderScopedQuery) ([]*collab.Participant, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	participants, err := uow.ParticipantRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	facts := services.OrderFacts{IsParticipant: includesCourier(participants, query.Actor())}
	if err = authorize(h.authz, query.Actor(), actor.OpCollabList, services.Relationships(query.Actor(), o, facts)); err != nil {
		return nil, err
	}
	return participants, nil
}

func includesCourier(participants []*collab.Participant, a actor.Actor) bool {
	if !a.IsCourier() {
		return false
	}
	for _, p := range participants {
		if p.CourierID().IsEqual(a.ID()) {
			return true
		}
	}
	return false
}
