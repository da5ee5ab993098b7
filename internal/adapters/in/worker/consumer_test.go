package worker_test

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/adapters/in/worker"
	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPusher struct{ mock.Mock }

func (m *MockPusher) Push(ctx context.Context, n ports.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockSettler struct{ mock.Mock }

func (m *MockSettler) Handle(ctx context.Context, cmd commands.SettleOrderCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockChannel struct{ mock.Mock }

func (m *MockChannel) Send(ctx context.Context, destination, message string) error {
	return m.Called(ctx, destination, message).Error(0)
}

func newMux(c *worker.Consumer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	c.Register(mux)
	return mux
}

func TestConsumer_Notification(t *testing.T) {
	n := ports.Notification{Kind: ports.NotifyBidPlaced, Recipient: kernel.NewUUID(), OrderID: kernel.NewUUID()}
	task, err := queue.NewNotificationTask(n)
	require.NoError(t, err)

	pusher := &MockPusher{}
	pusher.On("Push", mock.Anything, mock.MatchedBy(func(got ports.Notification) bool {
		return got.Kind == n.Kind && got.Recipient.IsEqual(n.Recipient)
	})).Return(nil).Once()

	err = newMux(worker.NewConsumer(pusher, nil, nil, nil)).ProcessTask(context.Background(), task)

	require.NoError(t, err)
	pusher.AssertExpectations(t)
}

func TestConsumer_NotificationPushFailureIsRetried(t *testing.T) {
	task, err := queue.NewNotificationTask(ports.Notification{Kind: ports.NotifyBidPlaced, Recipient: kernel.NewUUID(), OrderID: kernel.NewUUID()})
	require.NoError(t, err)
	pusher := &MockPusher{}
	pusher.On("Push", mock.Anything, mock.Anything).Return(errors.New("gateway down"))

	err = newMux(worker.NewConsumer(pusher, nil, nil, nil)).ProcessTask(context.Background(), task)

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestConsumer_MalformedPayloadSkipsRetry(t *testing.T) {
	mux := newMux(worker.NewConsumer(&MockPusher{}, &MockSettler{}, nil, nil))
	for _, typename := range []string{queue.TaskNotification, queue.TaskSettlement, queue.TaskOTPSend} {
		err := mux.ProcessTask(context.Background(), asynq.NewTask(typename, []byte(`{`)))
		assert.ErrorIs(t, err, asynq.SkipRetry, typename)
	}
}

func TestConsumer_Settlement(t *testing.T) {
	orderID := kernel.NewUUID()
	task, err := queue.NewSettlementTask(orderID)
	require.NoError(t, err)

	settler := &MockSettler{}
	settler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SettleOrderCommand) bool {
		return cmd.OrderID().IsEqual(orderID)
	})).Return(nil).Once()

	require.NoError(t, newMux(worker.NewConsumer(nil, settler, nil, nil)).ProcessTask(context.Background(), task))
	settler.AssertExpectations(t)
}

func TestConsumer_SettlementOutcomes(t *testing.T) {
	tests := map[string]struct {
		handleErr error
		wantErr   bool
	}{
		"missing order is dropped": {errs.NewObjectNotFoundError("order", "x"), false},
		"ledger failure retries":   {errors.New("ledger down"), true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			task, err := queue.NewSettlementTask(kernel.NewUUID())
			require.NoError(t, err)
			settler := &MockSettler{}
			settler.On("Handle", mock.Anything, mock.Anything).Return(tt.handleErr)

			err = newMux(worker.NewConsumer(nil, settler, nil, nil)).ProcessTask(context.Background(), task)

			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestConsumer_OTPSend(t *testing.T) {
	task, err := queue.NewOTPSendTask(order.ChannelEmail, "rosa@example.com", "Your code is 123456")
	require.NoError(t, err)
	sms, email := &MockChannel{}, &MockChannel{}
	email.On("Send", mock.Anything, "rosa@example.com", "Your code is 123456").Return(nil).Once()

	consumer := worker.NewConsumer(nil, nil, map[order.Channel]ports.OTPChannel{
		order.ChannelSMS:   sms,
		order.ChannelEmail: email,
	}, nil)

	require.NoError(t, newMux(consumer).ProcessTask(context.Background(), task))
	email.AssertExpectations(t)
	sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsumer_OTPSendUnknownChannelIsDropped(t *testing.T) {
	task, err := queue.NewOTPSendTask(order.ChannelWhatsApp, "+56911112222", "code")
	require.NoError(t, err)

	assert.NoError(t, newMux(worker.NewConsumer(nil, nil, nil, nil)).ProcessTask(context.Background(), task))
}
