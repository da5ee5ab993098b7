package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// RegisterCourier handles POST /api/v1/couriers.
func (s *Server) RegisterCourier(c echo.Context) error {
	var req CourierRegistration
	if err := bind(c, &req); err != nil {
		return err
	}
	vehicle, err := order.ParseVehicle(req.Vehicle)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRegisterCourierCommand(actorFrom(c), req.CourierID, req.Name, vehicle, req.Verified)
	if err != nil {
		return err
	}
	cr, err := s.h.RegisterCourier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, courierFromDomain(cr))
}

// ListCouriers handles GET /api/v1/couriers.
func (s *Server) ListCouriers(c echo.Context) error {
	var online *bool
	if err := queryParam(c, "online", &online); err != nil {
		return err
	}
	limit, offset, err := page(c)
	if err != nil {
		return err
	}

	query, err := queries.NewListCouriersQuery(actorFrom(c), online != nil && *online, limit, offset)
	if err != nil {
		return err
	}
	views, err := s.h.ListCouriers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]Courier, 0, len(views))
	for _, v := range views {
		out = append(out, courierFromView(v))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateCourierPresence handles PUT /api/v1/couriers/me/presence.
func (s *Server) UpdateCourierPresence(c echo.Context) error {
	var req Presence
	if err := bind(c, &req); err != nil {
		return err
	}
	position, err := req.Location.toDomain()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateCourierPresenceCommand(actorFrom(c), req.Online, position)
	if err != nil {
		return err
	}
	cr, err := s.h.CourierPresence.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courierFromDomain(cr))
}
