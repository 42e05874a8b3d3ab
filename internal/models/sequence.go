package models

import "time"

// SequenceCounter 序列计数器表
// 每个实体类型一行，值只增不减，由序列分配器以原子自增方式发号。
type SequenceCounter struct {
	ID        uint      `gorm:"primarykey" json:"id"`             // 主键
	Name      string    `gorm:"uniqueIndex;not null" json:"name"` // 实体名称
	Value     int64     `gorm:"not null;default:0" json:"value"`  // 当前值
	CreatedAt time.Time `json:"created_at"`                       // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                       // 更新时间
}

// TableName 指定表名
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
