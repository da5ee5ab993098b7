package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/authz"
	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/testkit"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real
// PostgreSQL so row locks and numeric columns behave as in production.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   *postgres_adapter.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(postgres_adapter.Config{Driver: "postgres", DSN: dsn, MaxOpenConns: 10}, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.db = db
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, tracking_points, bids, counter_offers, collaborative_participants, couriers",
	).Error)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRoundTrip_PreservesMoneyAndAddresses() {
	ctx := context.Background()
	o := testkit.Order(suite.T(), kernel.NewUUID(), order.TypeStandard)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	got, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(got.ProposedPrice().IsEqual(o.ProposedPrice()))
	suite.Equal(o.Delivery().ContactPhone(), got.Delivery().ContactPhone())
	suite.Require().NotNil(got.Pickup().Point())
}

// Two transactions lock the same row; the second sees the first one's
// result and must not accept a second courier.
func (suite *UnitOfWorkIntegrationTestSuite) TestGetForUpdate_SerializesAccepts() {
	ctx := context.Background()
	o := testkit.Order(suite.T(), kernel.NewUUID(), order.TypeStandard)
	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
	suite.Require().NoError(seed.Commit(ctx))

	accept := func() error {
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer func() { _ = uow.Rollback(ctx) }()

		locked, err := uow.OrderRepository().GetForUpdate(ctx, o.ID())
		if err != nil {
			return err
		}
		if err = locked.AcceptBid(kernel.NewUUID(), kernel.MoneyFromInt(9000), testkit.Now); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, locked); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = accept()
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			suite.ErrorIs(err, errs.ErrConflict)
			failures++
		}
	}
	suite.Equal(1, failures)
}

type uowFunc func() commands.UoW

func (f uowFunc) Create() commands.UoW { return f() }

// An accept holding the order lock must finish before a counter offer on the
// same bid can be resolved; the resolve then finds the order closed and the
// winning bid keeps the price the order was accepted at.
func (suite *UnitOfWorkIntegrationTestSuite) TestCounterOfferResolve_WaitsForAccept() {
	ctx := context.Background()
	t := suite.T()
	client := testkit.Actor(t, actor.RoleClient)
	rider := testkit.Actor(t, actor.RoleCourier)

	o := testkit.Order(t, client.ID(), order.TypeStandard)
	b, err := bid.NewBid(kernel.NewUUID(), o.ID(), rider.ID(), kernel.MoneyFromInt(9000), bid.Times{}, testkit.Now)
	suite.Require().NoError(err)
	counter, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(7500), "7500?", testkit.Now)
	suite.Require().NoError(err)

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
	suite.Require().NoError(seed.BidRepository().Add(ctx, b))
	suite.Require().NoError(seed.CounterOfferRepository().Add(ctx, counter))
	suite.Require().NoError(seed.Commit(ctx))

	enforcer, err := authz.New(suite.db, nil)
	suite.Require().NoError(err)
	counters := commands.NewCounterOfferCommandHandler(
		uowFunc(func() commands.UoW { return suite.factory.Create() }),
		enforcer, nil, clock.NewManual(testkit.Now), nil,
	)

	accept := suite.factory.Create()
	suite.Require().NoError(accept.Begin(ctx))
	defer func() { _ = accept.Rollback(ctx) }()
	locked, err := accept.OrderRepository().GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	winner, err := accept.BidRepository().Get(ctx, b.ID())
	suite.Require().NoError(err)

	resolved := make(chan error, 1)
	go func() {
		cmd, err := commands.NewResolveCounterOfferCommand(rider, o.ID(), counter.ID(), true)
		if err != nil {
			resolved <- err
			return
		}
		_, err = counters.Resolve(ctx, cmd)
		resolved <- err
	}()

	select {
	case err := <-resolved:
		suite.FailNow("resolve returned while the order row was locked", "error: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(locked.AcceptBid(winner.CourierID(), winner.Price(), testkit.Now))
	suite.Require().NoError(winner.Accept(testkit.Now))
	suite.Require().NoError(accept.BidRepository().Update(ctx, winner))
	suite.Require().NoError(accept.OrderRepository().Update(ctx, locked))
	suite.Require().NoError(accept.Commit(ctx))

	suite.ErrorIs(<-resolved, errs.ErrConflict)

	reader := suite.factory.Create()
	storedBid, err := reader.BidRepository().Get(ctx, b.ID())
	suite.Require().NoError(err)
	suite.Equal(bid.StatusAccepted, storedBid.Status())
	suite.True(storedBid.Price().IsEqual(kernel.MoneyFromInt(9000)))

	storedOrder, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, storedOrder.Status())
	suite.Require().NotNil(storedOrder.FinalPrice())
	suite.True(storedOrder.FinalPrice().IsEqual(storedBid.Price()))

	storedCounter, err := reader.CounterOfferRepository().Get(ctx, counter.ID())
	suite.Require().NoError(err)
	suite.Equal(bid.CounterPending, storedCounter.Status())
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
