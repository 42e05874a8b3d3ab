package worker

import (
	"context"

	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/provider"
	"github.com/marketbay/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Warnw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
}

// handleNotificationDispatch 把落库的通知推给下游渠道。
// 当前下游只有结构化日志；通知记录本身在入队前已经落库，
// 这里失败不影响站内未读数。
func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Warnw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseNotificationDispatchPayload(task)
	if err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.NotificationID == 0 {
		logger.Warnw("worker_notification_dispatch_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}
	notification, err := c.NotificationRepo.GetByID(payload.NotificationID)
	if err != nil {
		logger.Warnw("worker_notification_dispatch_fetch_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
	if notification == nil {
		logger.Warnw("worker_notification_dispatch_skip_not_found", "notification_id", payload.NotificationID)
		return nil
	}
	logger.Infow("notification_dispatched",
		"notification_id", notification.ID,
		"user_id", notification.UserID,
		"type", notification.Type,
		"title", notification.Title,
		"link", notification.Link,
	)
	return nil
}
