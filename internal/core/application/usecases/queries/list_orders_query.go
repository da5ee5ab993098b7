package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery pages through the orders visible to the caller.
type ListOrdersQuery struct {
	actor     actor.Actor
	status    *order.Status
	orderType *order.Type
	limit     int
	offset    int

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(a actor.Actor, status *order.Status, orderType *order.Type, limit, offset int) (ListOrdersQuery, error) {
	if err := a.Validate(); err != nil {
		return ListOrdersQuery{}, err
	}
	return ListOrdersQuery{
		actor:     a,
		status:    status,
		orderType: orderType,
		limit:     pageSize(limit),
		offset:    max(offset, 0),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Actor() actor.Actor { return q.actor }

func (q ListOrdersQuery) Status() *order.Status { return q.status }

func (q ListOrdersQuery) Type() *order.Type { return q.orderType }

func (q ListOrdersQuery) Limit() int { return q.limit }

func (q ListOrdersQuery) Offset() int { return q.offset }
