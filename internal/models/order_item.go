package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
// 价格与标题为下单时快照；LicenseKey 在支付完成时生成，全局唯一。
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                   // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`                         // 订单ID
	ProductID  uint           `gorm:"index;not null" json:"product_id"`                       // 商品ID
	VendorID   uint           `gorm:"index;not null" json:"vendor_id"`                        // 店铺ID（入账分组依据）
	Title      string         `gorm:"not null" json:"title"`                                  // 商品标题快照
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`    // 成交单价
	LicenseKey *string        `gorm:"uniqueIndex" json:"license_key,omitempty"`               // 授权密钥（支付完成后签发，未签发为 NULL）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                             // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
