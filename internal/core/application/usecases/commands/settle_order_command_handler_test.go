package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/testkit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type settleDeps struct {
	factory  *MockOrderUoWFactory
	repo     *MockOrderRepository
	ledger   *MockLedger
	loyalty  *MockLoyalty
	notifier *MockNotifier
	handler  commands.SettleOrderCommandHandler
}

func newSettleDeps(o *order.Order) settleDeps {
	d := settleDeps{
		factory:  new(MockOrderUoWFactory),
		repo:     new(MockOrderRepository),
		ledger:   new(MockLedger),
		loyalty:  new(MockLoyalty),
		notifier: new(MockNotifier),
	}
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(d.repo)
	d.factory.On("Create").Return(uow)
	d.repo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	d.handler = commands.NewSettleOrderCommandHandler(
		d.factory,
		fixedCommission{rate: decimal.RequireFromString("0.15")},
		d.ledger,
		d.loyalty,
		d.notifier,
		nil,
	)
	return d
}

func moneyIs(units int64) any {
	return mock.MatchedBy(func(m kernel.Money) bool { return m.IsEqual(kernel.MoneyFromInt(units)) })
}

func TestSettleOrderCommandHandler_PaysCourierNetOfCommission(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, courierID, order.Completed)
	d := newSettleDeps(o)

	d.ledger.On("Settle", ctx, o.ID(), mock.MatchedBy(func(amounts map[kernel.UUID]kernel.Money) bool {
		return len(amounts) == 1 && amounts[courierID].IsEqual(kernel.MoneyFromInt(8500))
	})).Return(ports.Receipt{Reference: "tx-1"}, nil).Once()
	d.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Kind == ports.NotifyEarningsDisbursed && n.Recipient.IsEqual(courierID) && n.Data["reference"] == "tx-1"
	})).Return(nil).Once()
	d.loyalty.On("Award", ctx, o.ClientID(), o.ID(), moneyIs(10000)).Return(nil).Once()

	cmd, err := commands.NewSettleOrderCommand(o.ID())
	require.NoError(t, err)
	require.NoError(t, d.handler.Handle(ctx, cmd))

	d.ledger.AssertExpectations(t)
	d.loyalty.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

func TestSettleOrderCommandHandler_CollaborativeOnlyAwardsLoyalty(t *testing.T) {
	ctx := t.Context()
	o := testkit.Order(t, kernel.NewUUID(), order.TypeCollaborative)
	testkit.Advance(t, o, kernel.NewUUID(), order.Completed)
	d := newSettleDeps(o)
	d.loyalty.On("Award", ctx, o.ClientID(), o.ID(), moneyIs(10000)).Return(nil).Once()

	cmd, err := commands.NewSettleOrderCommand(o.ID())
	require.NoError(t, err)
	require.NoError(t, d.handler.Handle(ctx, cmd))

	d.ledger.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	d.loyalty.AssertExpectations(t)
}

func TestSettleOrderCommandHandler_SkipsOrdersNotCompleted(t *testing.T) {
	ctx := t.Context()
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, kernel.NewUUID(), order.Delivered)
	d := newSettleDeps(o)

	cmd, err := commands.NewSettleOrderCommand(o.ID())
	require.NoError(t, err)
	require.NoError(t, d.handler.Handle(ctx, cmd))

	d.ledger.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	d.loyalty.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleOrderCommandHandler_LedgerFailureIsReturned(t *testing.T) {
	ctx := t.Context()
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, kernel.NewUUID(), order.Completed)
	d := newSettleDeps(o)
	ledgerErr := errors.New("ledger unavailable")
	d.ledger.On("Settle", ctx, o.ID(), mock.Anything).Return(ports.Receipt{}, ledgerErr)

	cmd, err := commands.NewSettleOrderCommand(o.ID())
	require.NoError(t, err)
	err = d.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, ledgerErr)
	d.loyalty.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
