package queue_test

import (
	"context"
	"testing"

	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationTask_RoundTrip(t *testing.T) {
	n := ports.Notification{
		Kind:      ports.NotifyBidAccepted,
		Recipient: kernel.NewUUID(),
		OrderID:   kernel.NewUUID(),
		Data:      map[string]string{"price": "8800.00"},
	}

	task, err := queue.NewNotificationTask(n)
	require.NoError(t, err)
	assert.Equal(t, queue.TaskNotification, task.Type())

	got, err := queue.ParseNotification(task)
	require.NoError(t, err)
	assert.Equal(t, n.Kind, got.Kind)
	assert.True(t, n.Recipient.IsEqual(got.Recipient))
	assert.True(t, n.OrderID.IsEqual(got.OrderID))
	assert.Equal(t, n.Data, got.Data)
}

func TestParseSettlement_RejectsBadID(t *testing.T) {
	_, err := queue.ParseSettlement(asynq.NewTask(queue.TaskSettlement, []byte(`{"order_id":"nope"}`)))
	assert.Error(t, err)

	_, err = queue.ParseSettlement(asynq.NewTask(queue.TaskSettlement, []byte(`{`)))
	assert.Error(t, err)
}

func TestSettlementTaskID(t *testing.T) {
	id := kernel.NewUUID()
	assert.Equal(t, "settle:"+id.String(), queue.SettlementTaskID(id))
}

func TestDisabledClient(t *testing.T) {
	c := queue.NewClient(queue.Config{}, nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Notify(ctx, ports.Notification{Kind: ports.NotifyBidPlaced}))
	assert.ErrorIs(t, c.EnqueueSettlement(ctx, kernel.NewUUID()), queue.ErrDisabled)
	assert.ErrorIs(t, c.OTPChannel(order.ChannelSMS).Send(ctx, "+56911112222", "code"), queue.ErrDisabled)
	assert.NoError(t, c.Close())
}

func TestServerConfig_Defaults(t *testing.T) {
	opt, cfg := queue.ServerConfig(queue.Config{})

	assert.Equal(t, "127.0.0.1:6379", opt.Addr)
	assert.Equal(t, 10, cfg.Concurrency)
	assert.Greater(t, cfg.Queues[queue.QueueCritical], cfg.Queues[queue.QueueDefault])
}
