package queries_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/candidates"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/testkit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderQuery_RejectsZeroOrderID(t *testing.T) {
	_, err := queries.NewGetOrderQuery(testkit.Actor(t, actor.RoleClient), kernel.UUID{})

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestGetOrderQueryHandler_NotConstructedQuery(t *testing.T) {
	f := newFixture(t)
	h := queries.NewGetOrderQueryHandler(f.uow, f.authz)

	_, err := h.Handle(f.ctx, queries.GetOrderQuery{})

	require.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
}

func TestGetOrderQueryHandler_Visibility(t *testing.T) {
	f := newFixture(t)
	h := queries.NewGetOrderQueryHandler(f.uow, f.authz)

	open := f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeStandard))
	assigned := testkit.Order(t, f.client.ID(), order.TypeStandard)
	otherCourier := kernel.NewUUID()
	f.addBid(t, assigned, f.courier.ID(), 9000)
	testkit.Advance(t, assigned, otherCourier, order.Accepted)
	f.addOrder(t, assigned)

	tests := []struct {
		name    string
		actor   actor.Actor
		orderID kernel.UUID
		wantErr error
	}{
		{"owner reads own order", f.client, open.ID(), nil},
		{"staff reads any order", f.admin, assigned.ID(), nil},
		{"any courier reads an open order", testkit.Actor(t, actor.RoleCourier), open.ID(), nil},
		{"losing bidder still reads the order", f.courier, assigned.ID(), nil},
		{"stranger client is forbidden", testkit.Actor(t, actor.RoleClient), open.ID(), errs.ErrForbidden},
		{"unrelated courier is forbidden once assigned", testkit.Actor(t, actor.RoleCourier), assigned.ID(), errs.ErrForbidden},
		{"missing order", f.client, kernel.NewUUID(), errs.ErrObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := queries.NewGetOrderQuery(tt.actor, tt.orderID)
			require.NoError(t, err)

			got, err := h.Handle(f.ctx, q)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.ID().IsEqual(tt.orderID))
		})
	}
}

func TestListOrdersQueryHandler_ScopesByRole(t *testing.T) {
	f := newFixture(t)
	h := queries.NewListOrdersQueryHandler(f.uow)

	f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeStandard))
	mine := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, mine, f.courier.ID(), order.PickedUp)
	f.addOrder(t, mine)
	f.addOrder(t, testkit.Order(t, kernel.NewUUID(), order.TypeExpress))
	theirs := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, theirs, kernel.NewUUID(), order.Accepted)
	f.addOrder(t, theirs)

	list := func(a actor.Actor, status *order.Status) []*order.Order {
		q, err := queries.NewListOrdersQuery(a, status, nil, 0, 0)
		require.NoError(t, err)
		got, err := h.Handle(f.ctx, q)
		require.NoError(t, err)
		return got
	}

	assert.Len(t, list(f.client, nil), 1)
	assert.Len(t, list(f.courier, nil), 2)
	assert.Len(t, list(f.admin, nil), 4)

	bidding := order.Bidding
	assert.Len(t, list(f.courier, &bidding), 1)
}

func TestListBidsQueryHandler(t *testing.T) {
	f := newFixture(t)
	h := queries.NewListBidsQueryHandler(f.uow, f.authz)
	o := f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeStandard))
	f.addBid(t, o, f.courier.ID(), 9000)
	f.addBid(t, o, kernel.NewUUID(), 9500)

	run := func(a actor.Actor) (int, error) {
		q, err := queries.NewOrderScopedQuery(a, o.ID())
		require.NoError(t, err)
		bids, err := h.Handle(f.ctx, q)
		return len(bids), err
	}

	t.Run("owner sees every bid", func(t *testing.T) {
		n, err := run(f.client)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
	t.Run("courier sees only own bids", func(t *testing.T) {
		n, err := run(f.courier)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
	t.Run("other client is forbidden", func(t *testing.T) {
		_, err := run(testkit.Actor(t, actor.RoleBusiness))
		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestFindBestCouriersQueryHandler(t *testing.T) {
	f := newFixture(t)
	matcher, err := services.NewMatcher(services.DefaultMatchingConfig())
	require.NoError(t, err)
	h := queries.NewFindBestCouriersQueryHandler(f.uow, f.authz, matcher, candidates.NewLoader(nil, nil), clock.NewManual(testkit.Now))

	o := f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeStandard))
	near := f.addCourier(t, testkit.MatchableCourier(t, kernel.NewUUID(), "Near", testkit.NorthOf(testkit.Origin, 1)))
	far := f.addCourier(t, testkit.MatchableCourier(t, kernel.NewUUID(), "Far", testkit.NorthOf(testkit.Origin, 4)))
	offline := testkit.MatchableCourier(t, kernel.NewUUID(), "Offline", testkit.Origin)
	offline.GoOffline(testkit.Now)
	f.addCourier(t, offline)

	find := func(a actor.Actor, radius float64) ([]services.RankedCourier, error) {
		q, err := queries.NewFindBestCouriersQuery(a, o.ID(), radius, 0)
		require.NoError(t, err)
		return h.Handle(f.ctx, q)
	}

	ranked, err := find(f.client, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].CourierID.IsEqual(near.ID()))
	assert.True(t, ranked[1].CourierID.IsEqual(far.ID()))
	assert.InDelta(t, 1.0, ranked[0].DistanceKm, 0.01)

	ranked, err = find(f.admin, 2)
	require.NoError(t, err)
	assert.Len(t, ranked, 1)

	_, err = find(f.courier, 0)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = queries.NewFindBestCouriersQuery(f.client, o.ID(), -1, 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestComputeEarningsQueryHandler_SplitsNetByShare(t *testing.T) {
	f := newFixture(t)
	h := queries.NewComputeEarningsQueryHandler(f.uow, f.authz, fixedCommission{rate: decimal.RequireFromString("0.20")})

	o := testkit.Order(t, f.client.ID(), order.TypeCollaborative)
	testkit.Advance(t, o, f.courier.ID(), order.Completed)
	f.addOrder(t, o)
	lead := f.addParticipant(t, o, f.courier.ID(), collab.RolePrimary, 70)
	helper := f.addParticipant(t, o, kernel.NewUUID(), collab.RoleSecondary, 30)

	q, err := queries.NewOrderScopedQuery(f.courier, o.ID())
	require.NoError(t, err)
	report, err := h.Handle(f.ctx, q)

	require.NoError(t, err)
	assert.True(t, report.FinalPrice.IsEqual(kernel.MoneyFromInt(10000)))
	assert.True(t, report.Net.IsEqual(kernel.MoneyFromInt(8000)))
	require.Len(t, report.Earnings, 2)
	byParticipant := map[kernel.UUID]kernel.Money{}
	for _, e := range report.Earnings {
		byParticipant[e.ParticipantID] = e.Amount
	}
	assert.True(t, byParticipant[lead.ID()].IsEqual(kernel.MoneyFromInt(5600)))
	assert.True(t, byParticipant[helper.ID()].IsEqual(kernel.MoneyFromInt(2400)))

	stranger, err := queries.NewOrderScopedQuery(testkit.Actor(t, actor.RoleCourier), o.ID())
	require.NoError(t, err)
	_, err = h.Handle(f.ctx, stranger)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestComputeEarningsQueryHandler_OrderNotCompleted(t *testing.T) {
	f := newFixture(t)
	h := queries.NewComputeEarningsQueryHandler(f.uow, f.authz, fixedCommission{rate: decimal.Zero})
	o := f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeCollaborative))

	q, err := queries.NewOrderScopedQuery(f.admin, o.ID())
	require.NoError(t, err)
	_, err = h.Handle(f.ctx, q)

	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestListParticipantsQueryHandler(t *testing.T) {
	f := newFixture(t)
	h := queries.NewListParticipantsQueryHandler(f.uow, f.authz)
	o := f.addOrder(t, testkit.Order(t, f.client.ID(), order.TypeCollaborative))
	f.addParticipant(t, o, f.courier.ID(), collab.RolePrimary, 60)
	f.addParticipant(t, o, kernel.NewUUID(), collab.RoleSupport, 40)

	for _, a := range []actor.Actor{f.client, f.courier, f.admin} {
		q, err := queries.NewOrderScopedQuery(a, o.ID())
		require.NoError(t, err)
		got, err := h.Handle(f.ctx, q)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}

	q, err := queries.NewOrderScopedQuery(testkit.Actor(t, actor.RoleCourier), o.ID())
	require.NoError(t, err)
	_, err = h.Handle(f.ctx, q)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestListCouriersQueryHandler(t *testing.T) {
	f := newFixture(t)
	h := queries.NewListCouriersQueryHandler(f.db, f.authz)
	f.addCourier(t, testkit.MatchableCourier(t, kernel.NewUUID(), "Ana", testkit.Origin))
	idle, err := courier.NewCourier(kernel.NewUUID(), "Bruno", order.VehicleBicycle, testkit.Now)
	require.NoError(t, err)
	f.addCourier(t, idle)

	q, err := queries.NewListCouriersQuery(f.admin, false, 0, 0)
	require.NoError(t, err)
	all, err := h.Handle(f.ctx, q)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)
	require.NotNil(t, all[0].Position)
	assert.InDelta(t, testkit.Origin.Lat(), all[0].Position.Lat(), 1e-9)
	assert.Nil(t, all[1].Position)
	assert.Equal(t, "bicycle", all[1].Vehicle)

	q, err = queries.NewListCouriersQuery(f.admin, true, 0, 0)
	require.NoError(t, err)
	online, err := h.Handle(f.ctx, q)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.True(t, online[0].Online)
	assert.True(t, online[0].Verified)

	q, err = queries.NewListCouriersQuery(f.courier, false, 0, 0)
	require.NoError(t, err)
	_, err = h.Handle(f.ctx, q)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestListTrackingQueryHandler(t *testing.T) {
	f := newFixture(t)
	h := queries.NewListTrackingQueryHandler(f.db, f.uow, f.authz)
	o := testkit.Order(t, f.client.ID(), order.TypeStandard)
	testkit.Advance(t, o, f.courier.ID(), order.InProgress)
	f.addOrder(t, o)

	repo := f.repos().OrderRepository()
	for i, km := range []float64{0.5, 1.5} {
		p, err := o.Track(kernel.NewUUID(), f.courier.ID(), testkit.NorthOf(testkit.Origin, km), testkit.Now.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.AddTrackingPoint(f.ctx, p))
	}

	q, err := queries.NewOrderScopedQuery(f.client, o.ID())
	require.NoError(t, err)
	points, err := h.Handle(f.ctx, q)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].RecordedAt.Before(points[1].RecordedAt))
	assert.True(t, points[0].CourierID.IsEqual(f.courier.ID()))
	assert.Greater(t, points[1].Point.Lat(), points[0].Point.Lat())

	q, err = queries.NewOrderScopedQuery(testkit.Actor(t, actor.RoleCourier), o.ID())
	require.NoError(t, err)
	_, err = h.Handle(f.ctx, q)
	require.ErrorIs(t, err, errs.ErrForbidden)
}
