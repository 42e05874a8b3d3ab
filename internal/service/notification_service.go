package service

import (
	"context"

	"github.com/marketbay/internal/cache"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/queue"
	"github.com/marketbay/internal/repository"
)

// NotificationService 通知服务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// CreateNotificationInput 创建通知输入
type CreateNotificationInput struct {
	UserID  uint
	Type    string
	Title   string
	Content string
	Link    string
	Payload models.JSON
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// Create 创建通知并推送投递任务
func (s *NotificationService) Create(input CreateNotificationInput) (*models.Notification, error) {
	if input.UserID == 0 || input.Type == "" || input.Title == "" {
		return nil, ErrInvalidInput
	}
	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   input.Title,
		Content: input.Content,
		Link:    input.Link,
		Payload: input.Payload,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}

	if err := cache.InvalidateUnreadCount(context.Background(), input.UserID); err != nil {
		logger.Warnw("notification_unread_cache_invalidate_failed", "user_id", input.UserID, "error", err)
	}
	if err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           notification.Type,
		Title:          notification.Title,
		Link:           notification.Link,
	}); err != nil {
		logger.Warnw("notification_dispatch_enqueue_failed", "notification_id", notification.ID, "error", err)
	}
	return notification, nil
}

// Notify 尽力而为地创建通知
// 通知失败只记日志，绝不影响触发它的业务事务。
func (s *NotificationService) Notify(input CreateNotificationInput) {
	if s == nil {
		return
	}
	if _, err := s.Create(input); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
}

// MarkRead 标记单条通知已读
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	if userID == 0 || notificationID == 0 {
		return ErrInvalidInput
	}
	updated, err := s.notificationRepo.MarkRead(notificationID, userID)
	if err != nil {
		return err
	}
	if !updated {
		notification, err := s.notificationRepo.GetByID(notificationID)
		if err != nil {
			return err
		}
		if notification == nil || notification.UserID != userID {
			return ErrNotificationNotFound
		}
		// 已读重复标记视为成功
		return nil
	}
	if err := cache.InvalidateUnreadCount(context.Background(), userID); err != nil {
		logger.Warnw("notification_unread_cache_invalidate_failed", "user_id", userID, "error", err)
	}
	return nil
}

// MarkAllRead 标记全部通知已读，返回置为已读的条数
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	affected, err := s.notificationRepo.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	if err := cache.InvalidateUnreadCount(context.Background(), userID); err != nil {
		logger.Warnw("notification_unread_cache_invalidate_failed", "user_id", userID, "error", err)
	}
	return affected, nil
}

// List 查询通知列表
func (s *NotificationService) List(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notificationRepo.List(filter)
}

// UnreadCount 查询未读通知数量（带缓存）
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	ctx := context.Background()
	if count, hit, err := cache.GetUnreadCount(ctx, userID); err == nil && hit {
		return count, nil
	}
	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	if err := cache.SetUnreadCount(ctx, userID, count); err != nil {
		logger.Warnw("notification_unread_cache_set_failed", "user_id", userID, "error", err)
	}
	return count, nil
}
