package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

var ErrOTPUndeliverable = errs.NewConflictErrorWithDetails(
	"otp undeliverable, use fallback",
	map[string]any{"fallback_required": true},
)

// GenerateOTPResult is what the caller learns about an issued code.
type GenerateOTPResult struct {
	Code        string
	Channel     order.Channel
	Destination string
	ExpiresAt   time.Time
}

// VerifyOTPResult echoes the domain verdict together with the order.
type VerifyOTPResult struct {
	order.VerifyResult
	Order *order.Order
}

// OTPChannels are the outbound routes for delivery codes. Either may be nil.
type OTPChannels struct {
	SMS   ports.OTPChannel
	Email ports.OTPChannel
}

// OTPCommandHandler runs the delivery confirmation gate.
type OTPCommandHandler struct {
	uowFactory OrderUoWFactory
	authz      ports.Authorizer
	codes      ports.CodeGenerator
	channels   OTPChannels
	policy     order.OTPPolicy
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *zap.SugaredLogger
}

func NewOTPCommandHandler(
	uowFactory OrderUoWFactory,
	authz ports.Authorizer,
	codes ports.CodeGenerator,
	channels OTPChannels,
	policy order.OTPPolicy,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *zap.SugaredLogger,
) OTPCommandHandler {
	return OTPCommandHandler{
		uowFactory: uowFactory,
		authz:      authz,
		codes:      codes,
		channels:   channels,
		policy:     policy,
		notifier:   notifier,
		clock:      clock,
		logger:     nopLogger(logger),
	}
}

// Generate creates a fresh code and sends it by SMS and by email. The code
// is stored only when at least one channel accepted it.
//
// Sending happens while the order row is locked so that concurrent requests
// for the same order queue behind the resend window instead of each texting
// the recipient a different code. A failed commit after a successful send
// leaves no code stored and no resend window opened, so the caller can retry
// at once.
func (h OTPCommandHandler) Generate(ctx context.Context, cmd GenerateOTPCommand) (GenerateOTPResult, error) {
	if err := cmd.Validate(); err != nil {
		return GenerateOTPResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GenerateOTPResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return GenerateOTPResult{}, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpOTPGenerate, rels); err != nil {
		return GenerateOTPResult{}, err
	}

	now := h.clock.Now()
	if err = o.CanIssueOTP(now, h.policy); err != nil {
		return GenerateOTPResult{}, err
	}
	code, err := h.codes.NumericCode(h.policy.Digits)
	if err != nil {
		return GenerateOTPResult{}, err
	}

	channel, destination := h.deliver(ctx, o, code)
	if channel == order.ChannelNone {
		return GenerateOTPResult{}, ErrOTPUndeliverable
	}
	if err = o.IssueOTP(code, channel, now, h.policy); err != nil {
		return GenerateOTPResult{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return GenerateOTPResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return GenerateOTPResult{}, err
	}

	h.logger.Infow("otp_issued", "order_id", o.ID().String(), "channel", string(channel))
	return GenerateOTPResult{
		Code:        code,
		Channel:     channel,
		Destination: destination,
		ExpiresAt:   now.Add(h.policy.Validity),
	}, nil
}

// deliver tries every configured channel and reports the first that
// accepted the code, with its masked destination.
func (h OTPCommandHandler) deliver(ctx context.Context, o *order.Order, code string) (order.Channel, string) {
	message := fmt.Sprintf("Your delivery code is %s. Valid for %d minutes.", code, int(h.policy.Validity.Minutes()))
	stop := o.Delivery()

	type route struct {
		channel     order.Channel
		sender      ports.OTPChannel
		destination string
		mask        func(string) string
	}
	routes := []route{
		{order.ChannelSMS, h.channels.SMS, stop.ContactPhone(), MaskPhone},
		{order.ChannelEmail, h.channels.Email, stop.ContactEmail(), MaskEmail},
	}

	accepted, masked := order.ChannelNone, ""
	for _, r := range routes {
		if r.sender == nil || r.destination == "" {
			continue
		}
		if err := r.sender.Send(ctx, r.destination, message); err != nil {
			h.logger.Warnw("otp_send_failed", "order_id", o.ID().String(), "channel", string(r.channel), "error", err)
			continue
		}
		if accepted == order.ChannelNone {
			accepted, masked = r.channel, r.mask(r.destination)
		}
	}
	return accepted, masked
}

// Verify checks the submitted code. Only the assigned courier may submit.
// A wrong code is persisted as a spent attempt and reported in the result.
func (h OTPCommandHandler) Verify(ctx context.Context, cmd VerifyOTPCommand) (VerifyOTPResult, error) {
	if err := cmd.Validate(); err != nil {
		return VerifyOTPResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return VerifyOTPResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return VerifyOTPResult{}, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpOTPVerify, rels); err != nil {
		return VerifyOTPResult{}, err
	}

	verdict, err := o.VerifyOTP(cmd.Code(), h.clock.Now(), h.policy)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return VerifyOTPResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return VerifyOTPResult{}, err
	}

	h.logger.Infow("otp_verified",
		"order_id", o.ID().String(),
		"success", verdict.Success,
		"remaining_attempts", verdict.RemainingAttempts,
	)
	if verdict.Success {
		h.notifyDelivered(ctx, o)
	}
	return VerifyOTPResult{VerifyResult: verdict, Order: o}, nil
}

// RecordFallback accepts a signature or photo reference as proof of handoff.
func (h OTPCommandHandler) RecordFallback(ctx context.Context, cmd RecordFallbackCommand) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	rels := services.Relationships(cmd.Actor(), o, services.OrderFacts{})
	if err = authorize(h.authz, cmd.Actor(), actor.OpProofFallback, rels); err != nil {
		return nil, err
	}

	if err = o.RecordFallback(cmd.Kind(), cmd.PayloadRef(), h.clock.Now()); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Infow("fallback_proof_recorded", "order_id", o.ID().String(), "kind", string(cmd.Kind()))
	h.notifyDelivered(ctx, o)
	return o, nil
}

func (h OTPCommandHandler) notifyDelivered(ctx context.Context, o *order.Order) {
	box := newOutbox(h.notifier, h.logger)
	box.add(ports.NotifyStatusChanged, o.ClientID(), o.ID(), map[string]string{"status": order.Delivered.String()})
	box.flush(ctx)
}

// MaskPhone keeps the country prefix and the last three digits of full
// numbers and only the last two of short ones. Seven characters or fewer are
// hidden entirely.
func MaskPhone(phone string) string {
	switch n := len(phone); {
	case n <= 7:
		return strings.Repeat("*", n)
	case n < 11:
		return strings.Repeat("*", n-2) + phone[n-2:]
	default:
		return phone[:4] + strings.Repeat("*", n-7) + phone[n-3:]
	}
}

// MaskEmail keeps the first letter of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}
	return email[:1] + strings.Repeat("*", max(at-1, 3)) + email[at:]
}
