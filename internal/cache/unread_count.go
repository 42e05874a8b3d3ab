package cache

import (
	"context"
	"fmt"
	"time"
)

const unreadCountCacheTTL = 5 * time.Minute

func unreadCountKey(userID uint) string {
	return fmt.Sprintf("notify:unread:%d", userID)
}

// GetUnreadCount 获取未读数缓存
func GetUnreadCount(ctx context.Context, userID uint) (int64, bool, error) {
	if userID == 0 || !Enabled() {
		return 0, false, nil
	}
	var count int64
	hit, err := GetJSON(ctx, unreadCountKey(userID), &count)
	if err != nil || !hit {
		return 0, false, err
	}
	return count, true, nil
}

// SetUnreadCount 写入未读数缓存
func SetUnreadCount(ctx context.Context, userID uint, count int64) error {
	if userID == 0 {
		return nil
	}
	return SetJSON(ctx, unreadCountKey(userID), count, unreadCountCacheTTL)
}

// InvalidateUnreadCount 删除未读数缓存
// 通知写入、已读标记后调用，下次读取回源重算。
func InvalidateUnreadCount(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, unreadCountKey(userID))
}
