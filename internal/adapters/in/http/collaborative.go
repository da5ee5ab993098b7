package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// JoinCollaborative handles POST /api/v1/deliveries/{id}/collaborative/join.
func (s *Server) JoinCollaborative(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req JoinRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	role, err := collab.ParseRole(req.Role)
	if err != nil {
		return err
	}

	cmd, err := commands.NewJoinCollaborativeCommand(actorFrom(c), id, kernel.NewUUID(), req.CourierID, role, req.Share)
	if err != nil {
		return err
	}
	p, err := s.h.Collaborative.Join(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, participantFromDomain(p))
}

// ListParticipants handles GET /api/v1/deliveries/{id}/collaborative.
func (s *Server) ListParticipants(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewOrderScopedQuery(actorFrom(c), id)
	if err != nil {
		return err
	}
	participants, err := s.h.ListParticipants.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]Participant, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantFromDomain(p))
	}
	return c.JSON(http.StatusOK, out)
}

// ComputeEarnings handles GET /api/v1/deliveries/{id}/collaborative/earnings.
func (s *Server) ComputeEarnings(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewOrderScopedQuery(actorFrom(c), id)
	if err != nil {
		return err
	}
	report, err := s.h.ComputeEarnings.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, earningsFromReport(report))
}

// DistributeEarnings handles POST /api/v1/deliveries/{id}/collaborative/distribute.
func (s *Server) DistributeEarnings(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDistributeEarningsCommand(actorFrom(c), id)
	if err != nil {
		return err
	}
	res, err := s.h.Collaborative.Distribute(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, distributionFromResult(res))
}

// UpdateParticipant handles PUT /api/v1/deliveries/{id}/collaborative/{participant_id}.
func (s *Server) UpdateParticipant(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	participantID, err := pathUUID(c, "participant_id")
	if err != nil {
		return err
	}
	var req ParticipantPatch
	if err = bind(c, &req); err != nil {
		return err
	}

	var status *collab.Status
	if req.Status != nil {
		parsed, err := collab.ParseStatus(*req.Status)
		if err != nil {
			return err
		}
		status = &parsed
	}

	cmd, err := commands.NewUpdateParticipantCommand(actorFrom(c), id, participantID, status, req.Share)
	if err != nil {
		return err
	}
	p, err := s.h.Collaborative.UpdateParticipant(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, participantFromDomain(p))
}
