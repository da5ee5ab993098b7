package order

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"
)

// Channel is how a delivery was confirmed, or how the code was delivered.
type Channel string

const (
	ChannelNone      Channel = ""
	ChannelSMS       Channel = "sms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelEmail     Channel = "email"
	ChannelSignature Channel = "signature"
	ChannelPhoto     Channel = "photo"
)

// IsFallback reports the proof kinds accepted without a code.
func (c Channel) IsFallback() bool {
	return c == ChannelSignature || c == ChannelPhoto
}

// ParseChannel validates a channel name.
func ParseChannel(raw string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail, ChannelSignature, ChannelPhoto:
		return c, nil
	default:
		return ChannelNone, errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q is not a valid channel", raw))
	}
}

// OTPPolicy holds the tunables of the delivery code gate.
type OTPPolicy struct {
	Validity       time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
	Digits         int
}

// DefaultOTPPolicy is a 6-digit code valid for 15 minutes, 3 attempts,
// resendable every 2 minutes.
func DefaultOTPPolicy() OTPPolicy {
	return OTPPolicy{
		Validity:       15 * time.Minute,
		MaxAttempts:    3,
		ResendCooldown: 2 * time.Minute,
		Digits:         6,
	}
}

// OTP is the delivery proof state embedded in an order.
type OTP struct {
	code            string
	sentAt          *time.Time
	verifiedAt      *time.Time
	attempts        int
	channel         Channel
	fallbackPayload string
}

func (p OTP) Code() string { return p.code }

func (p OTP) SentAt() *time.Time { return copyTime(p.sentAt) }

func (p OTP) VerifiedAt() *time.Time { return copyTime(p.verifiedAt) }

func (p OTP) Attempts() int { return p.attempts }

func (p OTP) Channel() Channel { return p.channel }

func (p OTP) FallbackPayload() string { return p.fallbackPayload }

// IsVerified reports whether a code or fallback proof was accepted.
func (p OTP) IsVerified() bool { return p.verifiedAt != nil }

// ExpiresAt is sentAt plus the validity window, or nil without a code.
func (p OTP) ExpiresAt(policy OTPPolicy) *time.Time {
	if p.sentAt == nil {
		return nil
	}
	return timePtr(p.sentAt.Add(policy.Validity))
}

// VerifyResult is the outcome of a code submission that was evaluated.
type VerifyResult struct {
	Success           bool
	RemainingAttempts int
	FallbackRequired  bool
}

// DeliveryProofSatisfied reports whether the order may move to delivered.
func (o *Order) DeliveryProofSatisfied() bool {
	return !o.requiresOTP || o.otp.verifiedAt != nil
}

// CanIssueOTP checks every precondition of code generation without changing
// the order. It returns RateLimitedError while the resend cooldown runs.
func (o *Order) CanIssueOTP(now time.Time, policy OTPPolicy) error {
	if !o.requiresOTP {
		return errs.NewConflictError("order does not require delivery confirmation")
	}
	if !o.delivery.HasContactChannel() {
		return errs.NewConflictErrorWithDetails("delivery stop has no contact channel", map[string]any{"fallback_required": true})
	}
	if o.otp.verifiedAt != nil {
		return errs.NewConflictError("delivery is already verified")
	}
	if o.status != InProgress {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("codes can only be issued while in_progress, order is %s", o.status),
			map[string]any{"status": o.status.String()},
		)
	}
	if o.otp.sentAt != nil {
		next := o.otp.sentAt.Add(policy.ResendCooldown)
		if now.Before(next) {
			return errs.NewRateLimitedError("otp resend", next.Sub(now))
		}
	}
	return nil
}

// IssueOTP stores a freshly generated code. Attempts are reset and the
// verification stamp is cleared.
func (o *Order) IssueOTP(code string, channel Channel, now time.Time, policy OTPPolicy) error {
	if err := o.CanIssueOTP(now, policy); err != nil {
		return err
	}
	if !isNumeric(code, policy.Digits) {
		return errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("expected %d digits", policy.Digits))
	}

	o.otp = OTP{
		code:    code,
		sentAt:  timePtr(now),
		channel: channel,
	}
	return nil
}

// VerifyOTP checks a submitted code. A match stamps the verification and
// moves the order to delivered. A mismatch consumes one attempt and returns
// the remaining budget; it is not an error. Locked, expired or absent codes
// return ConflictError carrying fallback hints.
func (o *Order) VerifyOTP(code string, now time.Time, policy OTPPolicy) (VerifyResult, error) {
	if !o.requiresOTP {
		return VerifyResult{}, errs.NewConflictError("order does not require delivery confirmation")
	}
	if o.otp.verifiedAt != nil {
		return VerifyResult{}, errs.NewConflictError("delivery is already verified")
	}
	if o.otp.code == "" || o.otp.sentAt == nil {
		return VerifyResult{}, errs.NewConflictError("no code has been issued for this order")
	}
	if o.status != InProgress {
		return VerifyResult{}, errs.NewConflictErrorWithDetails(
			fmt.Sprintf("codes can only be verified while in_progress, order is %s", o.status),
			map[string]any{"status": o.status.String()},
		)
	}
	if o.otp.attempts >= policy.MaxAttempts {
		return VerifyResult{}, errs.NewConflictErrorWithDetails(
			"code is locked after too many attempts, use fallback proof",
			map[string]any{"fallback_required": true, "remaining_attempts": 0},
		)
	}
	if now.After(o.otp.sentAt.Add(policy.Validity)) {
		return VerifyResult{}, errs.NewConflictErrorWithDetails(
			"code has expired, resend or use fallback proof",
			map[string]any{"fallback_required": true, "remaining_attempts": policy.MaxAttempts - o.otp.attempts},
		)
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(o.otp.code)) == 1 {
		o.otp.verifiedAt = timePtr(now)
		o.markDelivered(now)
		return VerifyResult{Success: true, RemainingAttempts: policy.MaxAttempts - o.otp.attempts}, nil
	}

	o.otp.attempts++
	remaining := max(policy.MaxAttempts-o.otp.attempts, 0)
	return VerifyResult{
		Success:           false,
		RemainingAttempts: remaining,
		FallbackRequired:  remaining == 0,
	}, nil
}

// RecordFallback accepts a signature or photo as proof of handoff and moves
// the order to delivered. It does not depend on any previous code.
func (o *Order) RecordFallback(kind Channel, payloadRef string, now time.Time) error {
	if !kind.IsFallback() {
		return errs.NewValueIsInvalidErrorWithCause("proof kind", fmt.Errorf("%q is not signature or photo", string(kind)))
	}
	payloadRef = strings.TrimSpace(payloadRef)
	if payloadRef == "" {
		return errs.NewValueIsRequiredError("proof payload")
	}
	if o.otp.verifiedAt != nil {
		return errs.NewConflictError("delivery is already verified")
	}
	if o.status != InProgress {
		return errs.NewConflictErrorWithDetails(
			fmt.Sprintf("proof can only be recorded while in_progress, order is %s", o.status),
			map[string]any{"status": o.status.String()},
		)
	}

	o.otp.channel = kind
	o.otp.fallbackPayload = payloadRef
	o.otp.verifiedAt = timePtr(now)
	o.markDelivered(now)
	return nil
}

func isNumeric(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
