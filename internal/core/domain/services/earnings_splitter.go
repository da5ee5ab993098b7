package services

import (
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrNotCollaborative = errs.NewConflictError("order is not collaborative")

// Earning is one participant's computed payout.
type Earning struct {
	ParticipantID kernel.UUID
	CourierID     kernel.UUID
	Share         decimal.Decimal
	Amount        kernel.Money
}

// EarningsSplitter divides a completed collaborative order's net price
// between its participants by share percentage.
type EarningsSplitter struct{}

func NewEarningsSplitter() EarningsSplitter {
	return EarningsSplitter{}
}

// Split computes net = final × (1 − commissionRate) and gives every
// participant net × share / 100, rounded to cents. Cancelled participants get
// zero. Shares are not required to sum to 100.
func (EarningsSplitter) Split(o *order.Order, commissionRate decimal.Decimal, participants []*collab.Participant) ([]Earning, error) {
	if o.Type() != order.TypeCollaborative {
		return nil, ErrNotCollaborative
	}
	if o.Status() != order.Completed {
		return nil, errs.NewConflictErrorWithDetails("earnings are only computed for completed orders",
			map[string]any{"status": o.Status().String()})
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errs.NewValueIsOutOfRangeError("commission rate", commissionRate.String(), 0, 1)
	}

	final := o.FinalPrice()
	if final == nil {
		return nil, errs.NewConflictError("order has no final price")
	}
	net := final.MulRate(decimal.NewFromInt(1).Sub(commissionRate))

	out := make([]Earning, 0, len(participants))
	for _, p := range participants {
		if !p.BelongsTo(o.ID()) {
			return nil, errs.NewObjectNotFoundError("participant", p.ID())
		}
		amount := kernel.Money{}
		if p.Status() != collab.StatusCancelled {
			amount = net.Percent(p.Share())
		}
		out = append(out, Earning{
			ParticipantID: p.ID(),
			CourierID:     p.CourierID(),
			Share:         p.Share(),
			Amount:        amount,
		})
	}
	return out, nil
}
