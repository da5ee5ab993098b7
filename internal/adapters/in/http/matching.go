package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// FindBestCouriers handles GET /api/v1/deliveries/{id}/matches.
func (s *Server) FindBestCouriers(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var radius *float64
	var limit *int
	if err = queryParam(c, "radius_km", &radius); err != nil {
		return err
	}
	if err = queryParam(c, "limit", &limit); err != nil {
		return err
	}

	// Zero falls back to the configured defaults.
	var radiusKm float64
	var n int
	if radius != nil {
		radiusKm = *radius
	}
	if limit != nil {
		n = *limit
	}

	query, err := queries.NewFindBestCouriersQuery(actorFrom(c), id, radiusKm, n)
	if err != nil {
		return err
	}
	ranked, err := s.h.FindBestCouriers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]CourierMatch, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, matchFromDomain(r))
	}
	return c.JSON(http.StatusOK, out)
}

// AutoAssignCourier handles POST /api/v1/deliveries/{id}/auto-assign.
func (s *Server) AutoAssignCourier(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAutoAssignCourierCommand(actorFrom(c), id)
	if err != nil {
		return err
	}
	res, err := s.h.AutoAssign.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	out := Assignment{Assigned: res.Assigned, Delivery: deliveryFromDomain(res.Order)}
	if res.Assigned {
		m := matchFromDomain(res.Match)
		out.Match = &m
	}
	return c.JSON(http.StatusOK, out)
}

// RecordTracking handles POST /api/v1/deliveries/{id}/tracking.
func (s *Server) RecordTracking(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req GeoPoint
	if err = bind(c, &req); err != nil {
		return err
	}
	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRecordTrackingCommand(actorFrom(c), id, kernel.NewUUID(), point)
	if err != nil {
		return err
	}
	p, err := s.h.RecordTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, trackingFromDomain(p))
}

// ListTracking handles GET /api/v1/deliveries/{id}/tracking.
func (s *Server) ListTracking(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewOrderScopedQuery(actorFrom(c), id)
	if err != nil {
		return err
	}
	points, err := s.h.ListTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]TrackingPoint, 0, len(points))
	for _, p := range points {
		out = append(out, trackingFromDomain(p))
	}
	return c.JSON(http.StatusOK, out)
}
