package ports

import (
	"context"

	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"
)

// ParticipantRepository persists collaborative participants.
type ParticipantRepository interface {
	Add(ctx context.Context, p *collab.Participant) error
	Update(ctx context.Context, p *collab.Participant) error
	Get(ctx context.Context, id kernel.UUID) (*collab.Participant, error)

	// ListByOrder returns participants in join order.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*collab.Participant, error)
}
