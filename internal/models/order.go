package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	SeqID         int64          `gorm:"uniqueIndex;not null" json:"seq_id"`                        // 顺序编号（对外展示，如 Order #1042）
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	CustomerID    uint           `gorm:"index;not null" json:"customer_id"`                         // 下单用户ID
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额（创建时固定）
	PaymentStatus string         `gorm:"index;not null" json:"payment_status"`                      // 支付状态
	PaymentMethod string         `gorm:"not null" json:"payment_method"`                            // 支付方式
	ProviderRef   string         `gorm:"index" json:"provider_ref,omitempty"`                       // 支付网关交易号
	ClientIP      string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // 下单客户端IP
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                      // 支付时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
