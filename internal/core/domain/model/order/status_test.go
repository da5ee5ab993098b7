package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []order.Status{
	order.Pending, order.Bidding, order.Accepted, order.PickedUp,
	order.InProgress, order.Delivered, order.Completed, order.Cancelled,
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		parsed, err := order.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := order.ParseStatus("shipped")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Error(t, order.Unknown.Validate())
	assert.Equal(t, "unknown", order.Status(42).String())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	legal := map[order.Status][]order.Status{
		order.Pending:    {order.Bidding, order.Accepted, order.Cancelled},
		order.Bidding:    {order.Accepted, order.Cancelled},
		order.Accepted:   {order.PickedUp, order.Cancelled},
		order.PickedUp:   {order.InProgress, order.Cancelled},
		order.InProgress: {order.Delivered, order.Cancelled},
		order.Delivered:  {order.Completed},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, l := range legal[from] {
				if l == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_ValidateTransition(t *testing.T) {
	t.Run("same status is a conflict", func(t *testing.T) {
		err := order.PickedUp.ValidateTransition(order.PickedUp)
		require.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorContains(t, err, "already in status picked_up")
	})

	t.Run("unreachable status is a conflict", func(t *testing.T) {
		err := order.Bidding.ValidateTransition(order.Delivered)
		require.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorContains(t, err, "cannot move order from bidding to delivered")
	})

	t.Run("terminal states go nowhere", func(t *testing.T) {
		for _, to := range allStatuses {
			assert.Error(t, order.Completed.ValidateTransition(to))
			assert.Error(t, order.Cancelled.ValidateTransition(to))
		}
	})
}

func TestStatus_ValidateCourierPresence(t *testing.T) {
	for _, s := range allStatuses {
		switch {
		case s.RequiresCourier():
			assert.NoError(t, s.ValidateCourierPresence(true), s.String())
			assert.Error(t, s.ValidateCourierPresence(false), s.String())
		case s == order.Cancelled:
			assert.NoError(t, s.ValidateCourierPresence(true))
			assert.NoError(t, s.ValidateCourierPresence(false))
		default:
			assert.Error(t, s.ValidateCourierPresence(true), s.String())
			assert.NoError(t, s.ValidateCourierPresence(false), s.String())
		}
	}
}

func TestStatus_Flags(t *testing.T) {
	assert.True(t, order.Pending.IsEditable())
	assert.True(t, order.Bidding.IsEditable())
	assert.False(t, order.Accepted.IsEditable())
	assert.True(t, order.Completed.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.False(t, order.Delivered.IsTerminal())
}

func TestType(t *testing.T) {
	typ, err := order.ParseType("")
	require.NoError(t, err)
	assert.Equal(t, order.TypeStandard, typ)

	_, err = order.ParseType("overnight")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	assert.Equal(t, order.Bidding, order.TypeStandard.InitialStatus())
	assert.Equal(t, order.Bidding, order.TypeCollaborative.InitialStatus())
	assert.Equal(t, order.Pending, order.TypeExpress.InitialStatus())
}
