package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                      // 主键
	SeqID        int64          `gorm:"uniqueIndex;not null" json:"seq_id"`                        // 顺序编号（对外展示）
	VendorID     uint           `gorm:"index;not null" json:"vendor_id"`                           // 店铺ID
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Title        string         `gorm:"not null" json:"title"`                                     // 商品标题
	Description  string         `gorm:"type:text" json:"description"`                              // 商品描述
	PriceAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	Images       StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags         StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	Status       string         `gorm:"index;not null;default:'pending'" json:"status"`            // 审核状态（pending/approved/rejected）
	RejectReason string         `gorm:"type:text" json:"reject_reason,omitempty"`                  // 驳回原因
	TotalSales   int64          `gorm:"not null;default:0" json:"total_sales"`                     // 累计销量（支付完成后累加）
	Sponsored    bool           `gorm:"index;not null;default:false" json:"sponsored"`             // 推广位标记（派生视图）
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Vendor Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"` // 店铺信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
