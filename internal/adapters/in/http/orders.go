package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(c echo.Context) error {
	return s.createDelivery(c, "")
}

// CreateCollaborativeDelivery handles POST /api/v1/deliveries/collaborative.
func (s *Server) CreateCollaborativeDelivery(c echo.Context) error {
	return s.createDelivery(c, order.TypeCollaborative)
}

func (s *Server) createDelivery(c echo.Context, forced order.Type) error {
	var req NewDelivery
	if err := bind(c, &req); err != nil {
		return err
	}
	draft, err := req.toDraft(forced)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(actorFrom(c), kernel.NewUUID(), draft)
	if err != nil {
		return err
	}
	o, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, deliveryFromDomain(o))
}

// ListDeliveries handles GET /api/v1/deliveries.
func (s *Server) ListDeliveries(c echo.Context) error {
	var rawStatus, rawType *string
	if err := queryParam(c, "status", &rawStatus); err != nil {
		return err
	}
	if err := queryParam(c, "type", &rawType); err != nil {
		return err
	}
	limit, offset, err := page(c)
	if err != nil {
		return err
	}

	var status *order.Status
	if rawStatus != nil {
		parsed, err := order.ParseStatus(*rawStatus)
		if err != nil {
			return err
		}
		status = &parsed
	}
	var orderType *order.Type
	if rawType != nil {
		parsed, err := order.ParseType(*rawType)
		if err != nil {
			return err
		}
		orderType = &parsed
	}

	query, err := queries.NewListOrdersQuery(actorFrom(c), status, orderType, limit, offset)
	if err != nil {
		return err
	}
	orders, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveriesFromDomain(orders))
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
func (s *Server) GetDelivery(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(actorFrom(c), id)
	if err != nil {
		return err
	}
	o, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryFromDomain(o))
}

// UpdateDelivery handles PUT /api/v1/deliveries/{id}.
func (s *Server) UpdateDelivery(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req DeliveryPatch
	if err = bind(c, &req); err != nil {
		return err
	}
	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderCommand(actorFrom(c), id, patch)
	if err != nil {
		return err
	}
	o, err := s.h.UpdateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryFromDomain(o))
}

// ChangeDeliveryStatus handles PUT /api/v1/deliveries/{id}/status.
func (s *Server) ChangeDeliveryStatus(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req StatusChange
	if err = bind(c, &req); err != nil {
		return err
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewChangeOrderStatusCommand(actorFrom(c), id, target, req.Reason)
	if err != nil {
		return err
	}
	o, err := s.h.ChangeStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryFromDomain(o))
}

// CancelDelivery handles POST /api/v1/deliveries/{id}/cancel.
func (s *Server) CancelDelivery(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req Cancellation
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(actorFrom(c), id, req.Reason)
	if err != nil {
		return err
	}
	o, err := s.h.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryFromDomain(o))
}
