package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Track(t *testing.T) {
	point, err := kernel.NewGeoPoint(-33.44, -70.65)
	require.NoError(t, err)

	t.Run("assigned courier while in progress", func(t *testing.T) {
		o, courierID := inProgressOrder(t)
		tp, err := o.Track(kernel.NewUUID(), courierID, point, baseTime)
		require.NoError(t, err)
		assert.True(t, tp.OrderID.IsEqual(o.ID()))
		assert.True(t, tp.Point.IsEqual(point))
	})

	t.Run("another courier is forbidden", func(t *testing.T) {
		o, _ := inProgressOrder(t)
		_, err := o.Track(kernel.NewUUID(), kernel.NewUUID(), point, baseTime)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("not in progress", func(t *testing.T) {
		o := newOrder(t, order.TypeStandard)
		courierID := kernel.NewUUID()
		require.NoError(t, o.AcceptBid(courierID, kernel.MoneyFromInt(1000), baseTime))
		_, err := o.Track(kernel.NewUUID(), courierID, point, baseTime)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})
}
