package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// GenerateOTP handles POST /api/v1/deliveries/{id}/otp.
func (s *Server) GenerateOTP(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewGenerateOTPCommand(actorFrom(c), id)
	if err != nil {
		return err
	}
	res, err := s.h.OTP.Generate(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, OTPIssued{
		Channel:     string(res.Channel),
		Destination: res.Destination,
		ExpiresAt:   res.ExpiresAt,
	})
}

// VerifyOTP handles POST /api/v1/deliveries/{id}/otp/verify. A wrong code is
// still a 200 with success=false so the caller can read the remaining attempts.
func (s *Server) VerifyOTP(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req OTPVerification
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewVerifyOTPCommand(actorFrom(c), id, req.Code)
	if err != nil {
		return err
	}
	res, err := s.h.OTP.Verify(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	out := OTPVerdict{
		Success:           res.Success,
		RemainingAttempts: res.RemainingAttempts,
		FallbackRequired:  res.FallbackRequired,
	}
	if res.Order != nil {
		d := deliveryFromDomain(res.Order)
		out.Delivery = &d
	}
	return c.JSON(http.StatusOK, out)
}

// RecordProof handles POST /api/v1/deliveries/{id}/proof.
func (s *Server) RecordProof(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req Proof
	if err = bind(c, &req); err != nil {
		return err
	}
	kind, err := order.ParseChannel(req.Kind)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRecordFallbackCommand(actorFrom(c), id, kind, req.Payload)
	if err != nil {
		return err
	}
	o, err := s.h.OTP.RecordFallback(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryFromDomain(o))
}
