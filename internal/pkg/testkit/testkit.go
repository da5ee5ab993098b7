// Package testkit builds databases and aggregates for tests across packages.
package testkit

import (
	"fmt"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the fixed instant fixtures are stamped with.
var Now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// Origin is the pickup point used by default, in central Santiago.
var Origin = Point(-33.4372, -70.6506)

// SQLite opens a private in-memory database with the full schema. A single
// connection keeps every transaction serialized.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := postgres.Open(postgres.Config{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:dispatch_%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Point panics on invalid coordinates; fixtures only use literals.
func Point(lat, lng float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

// NorthOf moves p km kilometres due north.
func NorthOf(p kernel.GeoPoint, km float64) kernel.GeoPoint {
	return Point(p.Lat()+km/111.195, p.Lng())
}

// Address builds a stop with a contact phone and optional coordinates.
func Address(t testing.TB, line string, point *kernel.GeoPoint) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress(kernel.AddressInput{
		Line:         line,
		Commune:      "Santiago",
		Point:        point,
		ContactName:  "Rosa",
		ContactPhone: "+56911112222",
		ContactEmail: "rosa@example.com",
	})
	require.NoError(t, err)
	return a
}

// Draft is a 10000-unit order from Origin to a point 3 km north.
func Draft(t testing.TB, orderType order.Type) order.Draft {
	t.Helper()
	pkg, err := order.NewPackageDetails(order.PackageInput{Description: "documents", WeightKg: 1.5})
	require.NoError(t, err)
	pickup, drop := Origin, NorthOf(Origin, 3)
	return order.Draft{
		Pickup:        Address(t, "Huerfanos 1160", &pickup),
		Delivery:      Address(t, "Moneda 975", &drop),
		Package:       pkg,
		ProposedPrice: kernel.MoneyFromInt(10000),
		Type:          orderType,
	}
}

// Order creates an order of orderType owned by clientID.
func Order(t testing.TB, clientID kernel.UUID, orderType order.Type) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), clientID, Draft(t, orderType), Now)
	require.NoError(t, err)
	return o
}

// Actor creates an actor with a random id.
func Actor(t testing.TB, role actor.Role) actor.Actor {
	t.Helper()
	a, err := actor.New(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

// MatchableCourier is online, verified and positioned at p.
func MatchableCourier(t testing.TB, id kernel.UUID, name string, p kernel.GeoPoint) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(id, name, order.VehicleMotorcycle, Now)
	require.NoError(t, err)
	c.Verify()
	c.ReportPosition(p, Now)
	c.GoOnline(Now)
	return c
}

// Advance walks o from bidding or pending to target with courierID attached
// at the proposed price. Delivery is proven with a signature.
func Advance(t testing.TB, o *order.Order, courierID kernel.UUID, target order.Status) {
	t.Helper()
	require.NoError(t, o.AssignCourier(courierID, Now))
	steps := []order.Status{order.PickedUp, order.InProgress, order.Delivered, order.Completed}
	for i, s := range steps {
		if target < s {
			return
		}
		at := Now.Add(time.Duration(i+1) * 10 * time.Minute)
		if s == order.Delivered {
			require.NoError(t, o.RecordFallback(order.ChannelSignature, "signatures/"+o.ID().String(), at))
			continue
		}
		require.NoError(t, o.TransitionTo(s, at))
	}
}
