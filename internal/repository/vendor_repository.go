package repository

import (
	"errors"

	"github.com/marketbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository 店铺数据访问接口
type VendorRepository interface {
	GetByID(id uint) (*models.Vendor, error)
	GetByIDForUpdate(id uint) (*models.Vendor, error)
	GetByUserID(userID uint) (*models.Vendor, error)
	Create(vendor *models.Vendor) error
	Update(vendor *models.Vendor) error
	SetSponsored(id uint, sponsored bool) error
	List(filter VendorListFilter) ([]models.Vendor, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormVendorRepository
}

// GormVendorRepository GORM 店铺仓储实现
type GormVendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository 创建店铺仓储
func NewVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// Transaction 开启事务
func (r *GormVendorRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormVendorRepository) WithTx(tx *gorm.DB) *GormVendorRepository {
	if tx == nil {
		return r
	}
	return &GormVendorRepository{db: tx}
}

// GetByID 按ID获取店铺
func (r *GormVendorRepository) GetByID(id uint) (*models.Vendor, error) {
	if id == 0 {
		return nil, nil
	}
	var vendor models.Vendor
	if err := r.db.First(&vendor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// GetByIDForUpdate 按ID加锁获取店铺
func (r *GormVendorRepository) GetByIDForUpdate(id uint) (*models.Vendor, error) {
	if id == 0 {
		return nil, nil
	}
	var vendor models.Vendor
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vendor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// GetByUserID 按用户ID获取店铺
func (r *GormVendorRepository) GetByUserID(userID uint) (*models.Vendor, error) {
	if userID == 0 {
		return nil, nil
	}
	var vendor models.Vendor
	if err := r.db.Where("user_id = ?", userID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// Create 创建店铺
func (r *GormVendorRepository) Create(vendor *models.Vendor) error {
	return r.db.Create(vendor).Error
}

// Update 更新店铺
func (r *GormVendorRepository) Update(vendor *models.Vendor) error {
	return r.db.Save(vendor).Error
}

// SetSponsored 更新店铺推广标记
func (r *GormVendorRepository) SetSponsored(id uint, sponsored bool) error {
	return r.db.Model(&models.Vendor{}).Where("id = ?", id).
		Update("sponsored", sponsored).Error
}

// List 分页查询店铺
func (r *GormVendorRepository) List(filter VendorListFilter) ([]models.Vendor, int64, error) {
	query := r.db.Model(&models.Vendor{})
	if filter.Search != "" {
		query = query.Where("store_name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.SponsoredOnly {
		query = query.Where("sponsored = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var vendors []models.Vendor
	if err := query.Order("id desc").Find(&vendors).Error; err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}
