package queue

import (
	"encoding/json"

	"github.com/marketbay/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 通知下游投递任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// NotificationDispatchPayload 通知投递任务负载
type NotificationDispatchPayload struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Link           string `json:"link,omitempty"`
}

// NewNotificationDispatchTask 构建通知投递任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, data), nil
}

// ParseNotificationDispatchPayload 解析通知投递任务负载
func ParseNotificationDispatchPayload(task *asynq.Task) (NotificationDispatchPayload, error) {
	var payload NotificationDispatchPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
