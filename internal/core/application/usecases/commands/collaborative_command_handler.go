package commands

import (
	"context"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

// Payout outcome states reported per participant by Distribute.
const (
	PayoutSettled     = "settled"
	PayoutAlreadyPaid = "already_paid"
	PayoutFailed      = "failed"
	PayoutSkipped     = "skipped"
)

// PayoutOutcome is the result of one participant's ledger call.
type PayoutOutcome struct {
	ParticipantID kernel.UUID
	CourierID     kernel.UUID
	Amount        kernel.Money
	Status        string
	Reference     string
	Error         string
}

// DistributeResult lists every participant's payout. Some may have failed
// while others settled.
type DistributeResult struct {
	OrderID  kernel.UUID
	Outcomes []PayoutOutcome
}

// CollaborativeCommandHandler manages the couriers of a collaborative order
// and pays them out once it completes.
type CollaborativeCommandHandler struct {
	uowFactory UoWFactory
	authz      ports.Authorizer
	commission ports.CommissionProvider
	ledger     ports.Ledger
	notifier   ports.Notifier
	clock      ports.Clock
	splitter   services.EarningsSplitter
	logger     *zap.SugaredLogger
}

func NewCollaborativeCommandHandler(
	uowFactory UoWFactory,
	authz ports.Authorizer,
	commission ports.CommissionProvider,
	ledger ports.Ledger,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) CollaborativeCommandHandler {
	return CollaborativeCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		commission: commission,
		ledger:     ledger,
		notifier:   notifier,
		clock:      clock,
		splitter:   services.NewEarningsSplitter(),
		logger:     nopLogger(logger),
	}
}

// Join adds a pending participant. A courier can hold one seat per order.
func (h CollaborativeCommandHandler) Join(ctx context.Context, cmd JoinCollaborativeCommand) (*collab.Participant, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	participantRepo := uow.ParticipantRepository()
	existing, err := participantRepo.ListByOrder(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{
		IsParticipant: hasCourier(existing, cmd.Actor().ID()),
	})
	if err = authorize(h.authz, cmd.Actor(), actor.OpCollabJoin, rels); err != nil {
		return nil, err
	}

	if o.Type() != order.TypeCollaborative {
		return nil, services.ErrNotCollaborative
	}
	if o.Status().IsTerminal() {
		return nil, errs.NewConflictErrorWithDetails("order no longer accepts participants",
			map[string]any{"status": o.Status().String()})
	}
	courierID, err := cmd.CourierID()
	if err != nil {
		return nil, err
	}
	if hasCourier(existing, courierID) {
		return nil, errs.NewConflictError("courier already participates in this order")
	}

	p, err := collab.NewParticipant(cmd.ParticipantID(), o.ID(), courierID, cmd.Role(), cmd.Share(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = participantRepo.Add(ctx, p); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("collaborator_joined",
		"order_id", o.ID().String(),
		"courier_id", courierID.String(),
		"role", string(p.Role()),
		"share", p.Share().String(),
	)
	return p, nil
}

// UpdateParticipant applies a staff change. Participants are frozen once the
// order is completed.
func (h CollaborativeCommandHandler) UpdateParticipant(ctx context.Context, cmd UpdateParticipantCommand) (*collab.Participant, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(h.authz, cmd.Actor(), actor.OpCollabManage, services.Relationships(cmd.Actor(), o, services.OrderFacts{})); err != nil {
		return nil, err
	}
	if o.Status() == order.Completed {
		return nil, errs.NewConflictError("participants are read-only once the order is completed")
	}

	participantRepo := uow.ParticipantRepository()
	p, err := participantRepo.Get(ctx, cmd.ParticipantID())
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(o.ID()) {
		return nil, errs.NewObjectNotFoundError("participant", cmd.ParticipantID())
	}

	if share := cmd.Share(); share != nil {
		if err = p.ChangeShare(*share); err != nil {
			return nil, err
		}
	}
	if status := cmd.Status(); status != nil {
		if err = p.ChangeStatus(*status, h.clock.Now()); err != nil {
			return nil, err
		}
	}

	if err = participantRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("collaborator_updated",
		"order_id", o.ID().String(),
		"participant_id", p.ID().String(),
		"status", string(p.Status()),
		"share", p.Share().String(),
	)
	return p, nil
}

// Distribute stores every unpaid participant's earnings in one transaction,
// then settles each payout with the ledger independently. A settled payout
// is recorded on the participant right away, so calling Distribute again
// after a partial failure only retries the participants still unpaid.
func (h CollaborativeCommandHandler) Distribute(ctx context.Context, cmd DistributeEarningsCommand) (DistributeResult, error) {
	if err := cmd.Validate(); err != nil {
		return DistributeResult{}, err
	}

	payouts, err := h.persistEarnings(ctx, cmd)
	if err != nil {
		return DistributeResult{}, err
	}

	result := DistributeResult{OrderID: cmd.OrderID(), Outcomes: make([]PayoutOutcome, 0, len(payouts))}
	box := newOutbox(h.notifier, h.logger)
	for _, p := range payouts {
		e := p.earning
		outcome := PayoutOutcome{ParticipantID: e.ParticipantID, CourierID: e.CourierID, Amount: e.Amount}
		switch {
		case p.paidRef != nil:
			outcome.Status = PayoutAlreadyPaid
			outcome.Reference = *p.paidRef
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		case !e.Amount.IsPositive():
			outcome.Status = PayoutSkipped
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		receipt, settleErr := h.ledger.Settle(ctx, cmd.OrderID(), map[kernel.UUID]kernel.Money{e.CourierID: e.Amount})
		if settleErr != nil {
			h.logger.Warnw("payout_failed",
				"order_id", cmd.OrderID().String(),
				"courier_id", e.CourierID.String(),
				"error", settleErr,
			)
			outcome.Status = PayoutFailed
			outcome.Error = settleErr.Error()
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		if err = h.markPaid(ctx, cmd.OrderID(), e.ParticipantID, receipt.Reference); err != nil {
			h.logger.Errorw("payout_record_failed",
				"order_id", cmd.OrderID().String(),
				"participant_id", e.ParticipantID.String(),
				"reference", receipt.Reference,
				"error", err,
			)
		}
		outcome.Status = PayoutSettled
		outcome.Reference = receipt.Reference
		result.Outcomes = append(result.Outcomes, outcome)
		box.add(ports.NotifyEarningsDisbursed, e.CourierID, cmd.OrderID(), map[string]string{
			"amount":    e.Amount.String(),
			"reference": receipt.Reference,
		})
	}
	box.flush(ctx)

	h.logger.Infow("earnings_distributed", "order_id", cmd.OrderID().String(), "participants", len(payouts))
	return result, nil
}

type pendingPayout struct {
	earning services.Earning
	paidRef *string
}

func (h CollaborativeCommandHandler) persistEarnings(ctx context.Context, cmd DistributeEarningsCommand) ([]pendingPayout, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(h.authz, cmd.Actor(), actor.OpCollabDistribute, services.Relationships(cmd.Actor(), o, services.OrderFacts{})); err != nil {
		return nil, err
	}

	participantRepo := uow.ParticipantRepository()
	participants, err := participantRepo.ListByOrder(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	rate, err := h.commission.CommissionRate(ctx, o.Type())
	if err != nil {
		return nil, err
	}
	earnings, err := h.splitter.Split(o, rate, participants)
	if err != nil {
		return nil, err
	}

	payouts := make([]pendingPayout, 0, len(participants))
	for i, p := range participants {
		if p.IsPaid() {
			ref := p.PayoutRef()
			e := earnings[i]
			if paid := p.Earnings(); paid != nil {
				e.Amount = *paid
			}
			payouts = append(payouts, pendingPayout{earning: e, paidRef: &ref})
			continue
		}
		if err = p.SetEarnings(earnings[i].Amount); err != nil {
			return nil, err
		}
		if err = participantRepo.Update(ctx, p); err != nil {
			return nil, err
		}
		payouts = append(payouts, pendingPayout{earning: earnings[i]})
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return payouts, nil
}

// markPaid stores the ledger reference under the order lock so a concurrent
// distribution sees the participant as paid.
func (h CollaborativeCommandHandler) markPaid(ctx context.Context, orderID, participantID kernel.UUID, reference string) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.OrderRepository().GetForUpdate(ctx, orderID); err != nil {
		return err
	}
	participantRepo := uow.ParticipantRepository()
	p, err := participantRepo.Get(ctx, participantID)
	if err != nil {
		return err
	}
	if err = p.MarkPaid(reference, h.clock.Now()); err != nil {
		return err
	}
	if err = participantRepo.Update(ctx, p); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func hasCourier(participants []*collab.Participant, courierID kernel.UUID) bool {
	for _, p := range participants {
		if p.CourierID().IsEqual(courierID) {
			return true
		}
	}
	return false
}
