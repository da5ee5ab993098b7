package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// PlaceBid handles POST /api/v1/deliveries/{id}/bids.
func (s *Server) PlaceBid(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req NewBid
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewPlaceBidCommand(actorFrom(c), id, kernel.NewUUID(), req.Price, bid.Times{
		Pickup:   req.ProposedPickupAt,
		Delivery: req.ProposedDeliveryAt,
	})
	if err != nil {
		return err
	}
	b, err := s.h.PlaceBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bidFromDomain(b))
}

// ListBids handles GET /api/v1/deliveries/{id}/bids.
func (s *Server) ListBids(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewOrderScopedQuery(actorFrom(c), id)
	if err != nil {
		return err
	}
	bids, err := s.h.ListBids.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bidsFromDomain(bids))
}

// AcceptBid handles POST /api/v1/deliveries/{id}/bids/{bid_id}/accept.
func (s *Server) AcceptBid(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	bidID, err := pathUUID(c, "bid_id")
	if err != nil {
		return err
	}

	cmd, err := commands.NewAcceptBidCommand(actorFrom(c), id, bidID)
	if err != nil {
		return err
	}
	res, err := s.h.AcceptBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acceptedFromResult(res))
}

// CreateCounterOffer handles POST /api/v1/deliveries/{id}/bids/{bid_id}/counter-offers.
func (s *Server) CreateCounterOffer(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	bidID, err := pathUUID(c, "bid_id")
	if err != nil {
		return err
	}
	var req NewCounterOffer
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCreateCounterOfferCommand(actorFrom(c), id, bidID, kernel.NewUUID(), req.Price, req.Message)
	if err != nil {
		return err
	}
	co, err := s.h.CounterOffers.Create(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, counterFromDomain(co))
}

// ResolveCounterOffer handles POST /api/v1/deliveries/{id}/counter-offers/{counter_id}/resolve.
func (s *Server) ResolveCounterOffer(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	counterID, err := pathUUID(c, "counter_id")
	if err != nil {
		return err
	}
	var req Resolution
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewResolveCounterOfferCommand(actorFrom(c), id, counterID, req.Accept)
	if err != nil {
		return err
	}
	co, err := s.h.CounterOffers.Resolve(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counterFromDomain(co))
}
