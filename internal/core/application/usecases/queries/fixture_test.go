package queries_test

import (
	"context"
	"testing"

	"dispatch/internal/adapters/out/authz"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/collab"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/testkit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	uow     *postgres.GormUnitOfWorkFactory
	authz   *authz.Enforcer
	client  actor.Actor
	courier actor.Actor
	admin   actor.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testkit.SQLite(t)
	enforcer, err := authz.New(db, nil)
	require.NoError(t, err)
	return fixture{
		ctx:     context.Background(),
		db:      db,
		uow:     postgres.NewGormUnitOfWorkFactory(db),
		authz:   enforcer,
		client:  testkit.Actor(t, actor.RoleClient),
		courier: testkit.Actor(t, actor.RoleCourier),
		admin:   testkit.Actor(t, actor.RoleAdmin),
	}
}

func (f fixture) repos() ports.UnitOfWork {
	return f.uow.Create()
}

func (f fixture) addOrder(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	require.NoError(t, f.repos().OrderRepository().Add(f.ctx, o))
	return o
}

func (f fixture) addBid(t *testing.T, o *order.Order, courierID kernel.UUID, price int64) *bid.Bid {
	t.Helper()
	b, err := bid.NewBid(kernel.NewUUID(), o.ID(), courierID, kernel.MoneyFromInt(price), bid.Times{}, testkit.Now)
	require.NoError(t, err)
	require.NoError(t, f.repos().BidRepository().Add(f.ctx, b))
	return b
}

func (f fixture) addParticipant(t *testing.T, o *order.Order, courierID kernel.UUID, role collab.Role, share int64) *collab.Participant {
	t.Helper()
	p, err := collab.NewParticipant(kernel.NewUUID(), o.ID(), courierID, role, decimal.NewFromInt(share), testkit.Now)
	require.NoError(t, err)
	require.NoError(t, f.repos().ParticipantRepository().Add(f.ctx, p))
	return p
}

func (f fixture) addCourier(t *testing.T, c *courier.Courier) *courier.Courier {
	t.Helper()
	require.NoError(t, f.repos().CourierRepository().Add(f.ctx, c))
	return c
}

type fixedCommission struct {
	rate decimal.Decimal
}

func (c fixedCommission) CommissionRate(context.Context, order.Type) (decimal.Decimal, error) {
	return c.rate, nil
}
