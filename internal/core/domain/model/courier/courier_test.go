package courier_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func createValidCourier(t *testing.T, vehicle order.VehicleClass) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), "Camila Rojas", vehicle, now)
	require.NoError(t, err)
	return c
}

func TestNewCourier(t *testing.T) {
	t.Run("should start offline and unverified", func(t *testing.T) {
		c := createValidCourier(t, order.VehicleMotorcycle)

		require.NoError(t, c.Validate())
		assert.Equal(t, "Camila Rojas", c.Name())
		assert.False(t, c.IsOnline())
		assert.False(t, c.IsVerified())
		assert.Nil(t, c.Position())
		assert.False(t, c.IsMatchable())
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.UUID{}, "  ", order.VehicleClass("rocket"), now)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, courier.ErrNameIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var c courier.Courier
		assert.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
	})
}

func TestCourier_IsMatchable(t *testing.T) {
	c := createValidCourier(t, order.VehicleCar)
	point, err := kernel.NewGeoPoint(-33.45, -70.66)
	require.NoError(t, err)

	c.GoOnline(now)
	assert.False(t, c.IsMatchable(), "unverified")

	c.Verify()
	assert.False(t, c.IsMatchable(), "no position")

	c.ReportPosition(point, now.Add(time.Minute))
	assert.True(t, c.IsMatchable())
	require.NotNil(t, c.LastSeenAt())
	assert.Equal(t, now.Add(time.Minute), *c.LastSeenAt())

	c.GoOffline(now.Add(2 * time.Minute))
	assert.False(t, c.IsMatchable())
}

func TestCourier_CanCarry(t *testing.T) {
	car := createValidCourier(t, order.VehicleCar)
	assert.True(t, car.CanCarry(order.VehicleAny))
	assert.True(t, car.CanCarry(order.VehicleBicycle))
	assert.True(t, car.CanCarry(order.VehicleCar))
	assert.False(t, car.CanCarry(order.VehicleVan))

	none := createValidCourier(t, order.VehicleAny)
	assert.True(t, none.CanCarry(order.VehicleAny))
	assert.False(t, none.CanCarry(order.VehicleBicycle))
}

func TestRestoreCourier(t *testing.T) {
	c := createValidCourier(t, order.VehicleVan)
	point, err := kernel.NewGeoPoint(10, 20)
	require.NoError(t, err)
	c.Verify()
	c.ReportPosition(point, now)

	restored, err := courier.RestoreCourier(c.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), restored.Snapshot())
	assert.False(t, restored.IsMatchable())
}

func TestStats_CompletionRate(t *testing.T) {
	assert.InDelta(t, 0.0, courier.Stats{}.CompletionRate(), 1e-9)
	assert.InDelta(t, 0.9, courier.Stats{Total: 10, Completed: 9}.CompletionRate(), 1e-9)
}
