package repository

import (
	"errors"
	"strings"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	GetByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateStatusIf(id uint, fromStatus, toStatus, rejectReason string) (bool, error)
	IncrementTotalSales(id uint, delta int64) error
	SetTotalSales(id uint, value int64) error
	SetSponsored(id uint, sponsored bool) error
	List(filter ProductListFilter) ([]models.Product, int64, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 商品仓储实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 按ID获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug 按 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品
func (r *GormProductRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// UpdateStatusIf 带前置状态校验的状态流转
// 返回 false 表示当前状态不匹配，未发生更新。
func (r *GormProductRepository) UpdateStatusIf(id uint, fromStatus, toStatus, rejectReason string) (bool, error) {
	updates := map[string]interface{}{
		"status":        toStatus,
		"reject_reason": rejectReason,
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementTotalSales 累加商品销量
func (r *GormProductRepository) IncrementTotalSales(id uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("total_sales", gorm.Expr("total_sales + ?", delta)).Error
}

// SetTotalSales 覆写商品累计销量（对账回填用）
func (r *GormProductRepository) SetTotalSales(id uint, value int64) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("total_sales", value).Error
}

// SetSponsored 更新商品推广标记
func (r *GormProductRepository) SetSponsored(id uint, sponsored bool) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		Update("sponsored", sponsored).Error
}

// List 分页查询商品
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ? AND status = ?", true, constants.ProductStatusApproved)
	}
	if filter.SponsoredOnly {
		query = query.Where("sponsored = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []models.Product
	if err := query.Order("sponsored desc, id desc").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
