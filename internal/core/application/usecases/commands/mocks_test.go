package commands_test

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListPendingExpress(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) AddTrackingPoint(ctx context.Context, p order.TrackingPoint) error {
	return m.Called(ctx, p).Error(0)
}

type MockBidRepository struct{ mock.Mock }

func (m *MockBidRepository) Add(ctx context.Context, b *bid.Bid) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBidRepository) Update(ctx context.Context, b *bid.Bid) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBidRepository) Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*bid.Bid)
	return b, args.Error(1)
}

func (m *MockBidRepository) ListByOrder(ctx context.Context, orderID kernel.UUID, courierID *kernel.UUID) ([]*bid.Bid, error) {
	args := m.Called(ctx, orderID, courierID)
	bids, _ := args.Get(0).([]*bid.Bid)
	return bids, args.Error(1)
}

func (m *MockBidRepository) ListPendingByOrder(ctx context.Context, orderID kernel.UUID) ([]*bid.Bid, error) {
	args := m.Called(ctx, orderID)
	bids, _ := args.Get(0).([]*bid.Bid)
	return bids, args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

func (m *MockCourierRepository) ListMatchable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	couriers, _ := args.Get(0).([]*courier.Courier)
	return couriers, args.Error(1)
}

func (m *MockCourierRepository) ListStaleOnline(ctx context.Context, seenBefore time.Time, limit int) ([]*courier.Courier, error) {
	args := m.Called(ctx, seenBefore, limit)
	couriers, _ := args.Get(0).([]*courier.Courier)
	return couriers, args.Error(1)
}

func (m *MockCourierRepository) Stats(ctx context.Context, ids []kernel.UUID, recentSince time.Time) (map[kernel.UUID]courier.Stats, error) {
	args := m.Called(ctx, ids, recentSince)
	stats, _ := args.Get(0).(map[kernel.UUID]courier.Stats)
	return stats, args.Error(1)
}

// MockUoW stands in for every narrowed unit of work of the package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) BidRepository() ports.BidRepository {
	return m.Called().Get(0).(ports.BidRepository)
}

func (m *MockUoW) CounterOfferRepository() ports.CounterOfferRepository {
	return m.Called().Get(0).(ports.CounterOfferRepository)
}

func (m *MockUoW) ParticipantRepository() ports.ParticipantRepository {
	return m.Called().Get(0).(ports.ParticipantRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	return m.Called().Get(0).(ports.CourierRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockAuthorizer struct{ mock.Mock }

func (m *MockAuthorizer) CanPerform(a actor.Actor, op actor.Operation, rels []actor.Relationship) bool {
	return m.Called(a, op, rels).Bool(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockGeoEstimator struct{ mock.Mock }

func (m *MockGeoEstimator) DistanceAndDuration(ctx context.Context, from, to kernel.Address) (float64, int, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Settle(ctx context.Context, orderID kernel.UUID, amounts map[kernel.UUID]kernel.Money) (ports.Receipt, error) {
	args := m.Called(ctx, orderID, amounts)
	return args.Get(0).(ports.Receipt), args.Error(1)
}

type MockLoyalty struct{ mock.Mock }

func (m *MockLoyalty) Award(ctx context.Context, clientID, orderID kernel.UUID, amount kernel.Money) error {
	return m.Called(ctx, clientID, orderID, amount).Error(0)
}

type MockOTPChannel struct{ mock.Mock }

func (m *MockOTPChannel) Send(ctx context.Context, destination, message string) error {
	return m.Called(ctx, destination, message).Error(0)
}

// recordingNotifier keeps every notification for scenario assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n ports.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) kinds(recipient kernel.UUID) []ports.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.NotificationKind
	for _, n := range r.sent {
		if n.Recipient.IsEqual(recipient) {
			out = append(out, n.Kind)
		}
	}
	return out
}

type recordingQueue struct {
	mu      sync.Mutex
	orderID []kernel.UUID
}

func (q *recordingQueue) EnqueueSettlement(_ context.Context, orderID kernel.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orderID = append(q.orderID, orderID)
	return nil
}

type fixedCommission struct{ rate decimal.Decimal }

func (c fixedCommission) CommissionRate(context.Context, order.Type) (decimal.Decimal, error) {
	return c.rate, nil
}

type fixedCodes struct{ code string }

func (c fixedCodes) NumericCode(int) (string, error) { return c.code, nil }

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW { return f() }

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW { return f() }

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW { return f() }

var (
	_ commands.UoW         = (*MockUoW)(nil)
	_ ports.Authorizer     = (*MockAuthorizer)(nil)
	_ ports.Notifier       = (*MockNotifier)(nil)
	_ ports.Ledger         = (*MockLedger)(nil)
	_ ports.GeoEstimator   = (*MockGeoEstimator)(nil)
	_ ports.OTPChannel     = (*MockOTPChannel)(nil)
	_ ports.LoyaltyService = (*MockLoyalty)(nil)
)
