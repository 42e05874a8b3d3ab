package public

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications 查询自己的通知
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	notifications, total, err := h.NotificationService.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		Type:       c.Query("type"),
		UnreadOnly: c.Query("unread") == "true",
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// UnreadNotificationCount 查询未读通知数量
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.UnreadCount(userID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid notification id", nil)
		return
	}
	if err := h.NotificationService.MarkRead(userID, uint(id)); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 标记全部通知已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	affected, err := h.NotificationService.MarkAllRead(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"marked": affected})
}
