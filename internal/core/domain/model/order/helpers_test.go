package order_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func mustAddress(t *testing.T, line string) kernel.Address {
	t.Helper()
	p, err := kernel.NewGeoPoint(-33.4372, -70.6506)
	require.NoError(t, err)
	a, err := kernel.NewAddress(kernel.AddressInput{
		Line:         line,
		Commune:      "Santiago",
		Point:        &p,
		ContactName:  "Rosa",
		ContactPhone: "+56911112222",
	})
	require.NoError(t, err)
	return a
}

func newDraft(t *testing.T, orderType order.Type) order.Draft {
	t.Helper()
	pkg, err := order.NewPackageDetails(order.PackageInput{Description: "documents", WeightKg: 1.2})
	require.NoError(t, err)
	return order.Draft{
		Pickup:        mustAddress(t, "Huerfanos 1160"),
		Delivery:      mustAddress(t, "Moneda 975"),
		Package:       pkg,
		ProposedPrice: kernel.MoneyFromInt(2500),
		Type:          orderType,
	}
}

func newOrder(t *testing.T, orderType order.Type) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), newDraft(t, orderType), baseTime)
	require.NoError(t, err)
	return o
}

// inProgressOrder walks a standard order up to in_progress with a courier.
func inProgressOrder(t *testing.T) (*order.Order, kernel.UUID) {
	t.Helper()
	o := newOrder(t, order.TypeStandard)
	courierID := kernel.NewUUID()
	require.NoError(t, o.AcceptBid(courierID, kernel.MoneyFromInt(2000), baseTime))
	require.NoError(t, o.TransitionTo(order.PickedUp, baseTime.Add(5*time.Minute)))
	require.NoError(t, o.TransitionTo(order.InProgress, baseTime.Add(6*time.Minute)))
	return o, courierID
}
