package services_test

import (
	"math"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	origin = mustPoint(-33.4372, -70.6506)
)

func mustPoint(lat, lng float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

// northOf returns a point km kilometres due north of p.
func northOf(p kernel.GeoPoint, km float64) kernel.GeoPoint {
	return mustPoint(p.Lat()+km/(kernel.EarthRadiusKm*math.Pi/180), p.Lng())
}

func address(t *testing.T, point *kernel.GeoPoint) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress(kernel.AddressInput{
		Line:         "Huerfanos 1160",
		Commune:      "Santiago",
		Point:        point,
		ContactPhone: "+56911112222",
	})
	require.NoError(t, err)
	return a
}

func newOrder(t *testing.T, orderType order.Type, pickup *kernel.GeoPoint, vehicle string) *order.Order {
	t.Helper()
	pkg, err := order.NewPackageDetails(order.PackageInput{Description: "box", Vehicle: vehicle})
	require.NoError(t, err)
	requiresOTP := false
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), order.Draft{
		Pickup:        address(t, pickup),
		Delivery:      address(t, &origin),
		Package:       pkg,
		ProposedPrice: kernel.MoneyFromInt(10000),
		Type:          orderType,
		RequiresOTP:   &requiresOTP,
	}, now)
	require.NoError(t, err)
	return o
}

func completedCollaborativeOrder(t *testing.T, finalPrice int64) *order.Order {
	t.Helper()
	o := newOrder(t, order.TypeCollaborative, &origin, "")
	require.NoError(t, o.AcceptBid(kernel.NewUUID(), kernel.MoneyFromInt(finalPrice), now))
	for _, s := range []order.Status{order.PickedUp, order.InProgress, order.Delivered, order.Completed} {
		require.NoError(t, o.TransitionTo(s, now.Add(time.Minute)))
	}
	return o
}

func onlineCourier(t *testing.T, name string, at kernel.GeoPoint, vehicle order.VehicleClass) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, vehicle, now)
	require.NoError(t, err)
	c.Verify()
	c.GoOnline(now)
	c.ReportPosition(at, now)
	return c
}

func ratingPtr(v float64) *float64 { return &v }
