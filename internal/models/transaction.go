package models

import (
	"time"
)

// Transaction 账本流水表
// 只追加不修改；Reference 唯一索引是入账幂等的依据。
type Transaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                              // 主键
	SeqID            int64     `gorm:"uniqueIndex;not null" json:"seq_id"`                                // 业务序号
	VendorID         uint      `gorm:"index;not null" json:"vendor_id"`                                   // 店铺ID
	OrderID          uint      `gorm:"index" json:"order_id,omitempty"`                                   // 关联订单ID（销售流水）
	WithdrawalID     uint      `gorm:"index" json:"withdrawal_id,omitempty"`                              // 关联提现ID（提现流水）
	Type             string    `gorm:"size:32;index;not null" json:"type"`                                // 流水类型 sale/withdrawal
	Status           string    `gorm:"size:32;not null;default:'completed'" json:"status"`                // 流水状态
	Amount           Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`               // 总金额
	CommissionAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`    // 平台佣金
	NetAmount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"net_amount"`           // 净入账金额
	Reference        string    `gorm:"size:128;uniqueIndex;not null" json:"reference"`                    // 幂等引用键
	Description      string    `gorm:"size:255" json:"description"`                                       // 描述
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                        // 更新时间
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
