package models

import (
	"time"

	"gorm.io/gorm"
)

// Vendor 店铺/卖家表
// TotalEarnings 与 WithdrawnAmount 均只增不减；可提余额为二者之差，
// 仅允许订单入账与提现审批两条路径修改。
type Vendor struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                        // 主键
	UserID          uint           `gorm:"uniqueIndex;not null" json:"user_id"`                         // 关联用户ID
	StoreName       string         `gorm:"not null" json:"store_name"`                                  // 店铺名称
	Description     string         `gorm:"type:text" json:"description"`                                // 店铺简介
	CommissionRate  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_rate"` // 平台佣金率（百分比）
	TotalEarnings   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`  // 累计净收入
	WithdrawnAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"withdrawn_amount"` // 累计已提现
	Sponsored       bool           `gorm:"index;not null;default:false" json:"sponsored"`               // 店铺推广位标记（派生视图）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Vendor) TableName() string {
	return "vendors"
}

// AvailableBalance 可提余额 = 累计净收入 - 累计已提现
func (v Vendor) AvailableBalance() Money {
	return NewMoneyFromDecimal(v.TotalEarnings.Decimal.Sub(v.WithdrawnAmount.Decimal))
}
