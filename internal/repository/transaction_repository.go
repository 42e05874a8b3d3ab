package repository

import (
	"errors"
	"strings"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 账本流水数据访问接口
type TransactionRepository interface {
	GetByID(id uint) (*models.Transaction, error)
	GetByReference(reference string) (*models.Transaction, error)
	Create(txn *models.Transaction) error
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	SumNetByVendor(vendorID uint, txnType string) (models.Money, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository GORM 账本流水仓储实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建账本流水仓储
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// GetByID 按ID获取流水
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	if id == 0 {
		return nil, nil
	}
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByReference 按幂等引用键获取流水
func (r *GormTransactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.Transaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Create 创建流水
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// List 分页查询流水
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.Transaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumNetByVendor 按店铺汇总某类流水的净额，用于对账
func (r *GormTransactionRepository) SumNetByVendor(vendorID uint, txnType string) (models.Money, error) {
	var raw *string
	query := r.db.Model(&models.Transaction{}).
		Where("vendor_id = ? AND status = ?", vendorID, constants.TransactionStatusCompleted)
	if txnType != "" {
		query = query.Where("type = ?", txnType)
	}
	if err := query.Select("CAST(SUM(net_amount) AS TEXT)").Scan(&raw).Error; err != nil {
		return models.Money{}, err
	}
	if raw == nil || *raw == "" {
		return models.NewMoneyFromFloat(0), nil
	}
	return models.NewMoneyFromString(*raw)
}
