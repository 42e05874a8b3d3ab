package models

import (
	"time"
)

// SponsorshipRequest 推广位申请表
type SponsorshipRequest struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                    // 主键
	SeqID        int64      `gorm:"uniqueIndex;not null" json:"seq_id"`                      // 业务序号
	VendorID     uint       `gorm:"index;not null" json:"vendor_id"`                         // 申请店铺ID
	Type         string     `gorm:"size:32;not null" json:"type"`                            // 推广类型 vendor/product
	Tier         string     `gorm:"size:32;not null" json:"tier"`                            // 档位 standard/premium
	ProductID    uint       `gorm:"index" json:"product_id,omitempty"`                       // 商品ID（type=product 时必填）
	Fee          Money      `gorm:"type:decimal(20,2);not null" json:"fee"`                  // 申请时按配置的费用快照
	Status       string     `gorm:"size:32;index;not null;default:'pending'" json:"status"`  // 状态 pending/approved/rejected
	RejectReason string     `gorm:"size:255" json:"reject_reason,omitempty"`                 // 驳回原因
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`                                  // 处理时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (SponsorshipRequest) TableName() string {
	return "sponsorship_requests"
}

// ActiveSponsor 生效中的推广位表
// 到期由后台巡检置为 expired；手工下线置为 cancelled。
type ActiveSponsor struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	RequestID uint      `gorm:"uniqueIndex;not null" json:"request_id"`                 // 来源申请ID
	VendorID  uint      `gorm:"index;not null" json:"vendor_id"`                        // 店铺ID
	Type      string    `gorm:"size:32;index;not null" json:"type"`                     // 推广类型
	Tier      string    `gorm:"size:32;not null" json:"tier"`                           // 档位
	ProductID uint      `gorm:"index" json:"product_id,omitempty"`                      // 商品ID
	Status    string    `gorm:"size:32;index;not null;default:'active'" json:"status"`  // 状态 active/expired/cancelled
	StartDate time.Time `gorm:"not null" json:"start_date"`                             // 生效时间
	EndDate   time.Time `gorm:"index;not null" json:"end_date"`                         // 到期时间
	CreatedAt time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (ActiveSponsor) TableName() string {
	return "active_sponsors"
}
