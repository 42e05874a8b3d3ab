package models

import (
	"time"
)

// Notification 站内通知表
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`                           // 主键
	UserID    uint      `gorm:"index;not null" json:"user_id"`                  // 接收用户ID
	Type      string    `gorm:"size:64;index;not null" json:"type"`             // 通知类型
	Title     string    `gorm:"size:255;not null" json:"title"`                 // 标题
	Content   string    `gorm:"type:text" json:"content"`                       // 内容
	Link      string    `gorm:"size:255" json:"link,omitempty"`                 // 跳转链接
	Payload   JSON      `gorm:"type:text" json:"payload,omitempty"`             // 附加数据
	IsRead    bool      `gorm:"index;not null;default:false" json:"is_read"`    // 是否已读
	CreatedAt time.Time `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
