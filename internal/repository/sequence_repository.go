package repository

import (
	"errors"
	"fmt"

	"github.com/marketbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository 序号计数器数据访问接口
type SequenceRepository interface {
	Next(name string) (int64, error)
	Current(name string) (int64, error)
	WithTx(tx *gorm.DB) *GormSequenceRepository
}

// GormSequenceRepository GORM 序号计数器仓储实现
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建序号计数器仓储
func NewSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSequenceRepository) WithTx(tx *gorm.DB) *GormSequenceRepository {
	if tx == nil {
		return r
	}
	return &GormSequenceRepository{db: tx}
}

// Next 分配下一个序号
// 自增和读取在同一事务内完成，计数器行的写锁保证并发分配不重号。
func (r *GormSequenceRepository) Next(name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name is empty")
	}
	var value int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SequenceCounter{}).
			Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 首次分配：插入初始值，并发插入冲突时退回自增路径
			counter := models.SequenceCounter{Name: name, Value: 1}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("value + 1")}),
			}).Create(&counter).Error; err != nil {
				return err
			}
		}
		var counter models.SequenceCounter
		if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
			return err
		}
		value = counter.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Current 查看当前序号，不推进计数器
func (r *GormSequenceRepository) Current(name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name is empty")
	}
	var counter models.SequenceCounter
	if err := r.db.Where("name = ?", name).First(&counter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Value, nil
}
