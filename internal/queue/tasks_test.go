package queue

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestNotificationDispatchTaskRoundTrip(t *testing.T) {
	task, err := NewNotificationDispatchTask(NotificationDispatchPayload{
		NotificationID: 11,
		UserID:         7,
		Type:           "sale",
		Title:          "New sale",
		Link:           "/vendor/transactions",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskNotificationDispatch {
		t.Fatalf("task type want %s got %s", TaskNotificationDispatch, task.Type())
	}

	payload, err := ParseNotificationDispatchPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.NotificationID != 11 || payload.UserID != 7 || payload.Type != "sale" || payload.Link != "/vendor/transactions" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseNotificationDispatchPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskNotificationDispatch, []byte("{not json"))
	if _, err := ParseNotificationDispatchPayload(task); err == nil {
		t.Fatalf("expected parse error for malformed payload")
	}
}

func TestClientIsNilSafe(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatalf("nil client should report disabled")
	}
	if err := c.EnqueueNotificationDispatch(NotificationDispatchPayload{NotificationID: 1}); err != nil {
		t.Fatalf("nil client enqueue should be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil client close should be a no-op, got %v", err)
	}
}
