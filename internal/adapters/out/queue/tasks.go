package queue

import (
	"encoding/json"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/hibiken/asynq"
)

const (
	TaskNotification = "dispatch:notification"
	TaskSettlement   = "dispatch:settlement"
	TaskOTPSend      = "dispatch:otp_send"
)

// NotificationPayload carries one user notification.
type NotificationPayload struct {
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient"`
	OrderID   string            `json:"order_id"`
	Data      map[string]string `json:"data,omitempty"`
}

// SettlementPayload names the completed order to settle.
type SettlementPayload struct {
	OrderID string `json:"order_id"`
}

// OTPSendPayload is a delivery code message for one channel.
type OTPSendPayload struct {
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
	Message     string `json:"message"`
}

func NewNotificationTask(n ports.Notification) (*asynq.Task, error) {
	return newTask(TaskNotification, NotificationPayload{
		Kind:      string(n.Kind),
		Recipient: n.Recipient.String(),
		OrderID:   n.OrderID.String(),
		Data:      n.Data,
	})
}

func NewSettlementTask(orderID kernel.UUID) (*asynq.Task, error) {
	return newTask(TaskSettlement, SettlementPayload{OrderID: orderID.String()})
}

func NewOTPSendTask(channel order.Channel, destination, message string) (*asynq.Task, error) {
	return newTask(TaskOTPSend, OTPSendPayload{
		Channel:     string(channel),
		Destination: destination,
		Message:     message,
	})
}

// SettlementTaskID deduplicates settlement of the same order while the task
// is retained by the broker.
func SettlementTaskID(orderID kernel.UUID) string {
	return "settle:" + orderID.String()
}

// ParseNotification decodes a notification task back into the port type.
func ParseNotification(task *asynq.Task) (ports.Notification, error) {
	var p NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return ports.Notification{}, fmt.Errorf("decode %s: %w", TaskNotification, err)
	}
	recipient, err := kernel.UUIDFromString(p.Recipient)
	if err != nil {
		return ports.Notification{}, fmt.Errorf("decode %s recipient: %w", TaskNotification, err)
	}
	orderID, err := kernel.UUIDFromString(p.OrderID)
	if err != nil {
		return ports.Notification{}, fmt.Errorf("decode %s order id: %w", TaskNotification, err)
	}
	return ports.Notification{
		Kind:      ports.NotificationKind(p.Kind),
		Recipient: recipient,
		OrderID:   orderID,
		Data:      p.Data,
	}, nil
}

func ParseSettlement(task *asynq.Task) (kernel.UUID, error) {
	var p SettlementPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return kernel.UUID{}, fmt.Errorf("decode %s: %w", TaskSettlement, err)
	}
	id, err := kernel.UUIDFromString(p.OrderID)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("decode %s order id: %w", TaskSettlement, err)
	}
	return id, nil
}

func ParseOTPSend(task *asynq.Task) (OTPSendPayload, error) {
	var p OTPSendPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return OTPSendPayload{}, fmt.Errorf("decode %s: %w", TaskOTPSend, err)
	}
	return p, nil
}

func newTask(typename string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body), nil
}
