package repository

import (
	"errors"
	"time"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SponsorshipRepository 推广位数据访问接口
type SponsorshipRepository interface {
	GetRequestByID(id uint) (*models.SponsorshipRequest, error)
	GetRequestByIDForUpdate(id uint) (*models.SponsorshipRequest, error)
	CreateRequest(request *models.SponsorshipRequest) error
	UpdateRequest(request *models.SponsorshipRequest) error
	HasOpenRequest(vendorID uint, sponsorType string, productID uint) (bool, error)
	ListRequests(filter SponsorshipRequestListFilter) ([]models.SponsorshipRequest, int64, error)
	GetActiveByID(id uint) (*models.ActiveSponsor, error)
	CreateActive(sponsor *models.ActiveSponsor) error
	UpdateActiveStatusIf(id uint, fromStatus, toStatus string) (bool, error)
	ListActive(filter ActiveSponsorListFilter) ([]models.ActiveSponsor, int64, error)
	ListDue(now time.Time, limit int) ([]models.ActiveSponsor, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormSponsorshipRepository
}

// GormSponsorshipRepository GORM 推广位仓储实现
type GormSponsorshipRepository struct {
	db *gorm.DB
}

// NewSponsorshipRepository 创建推广位仓储
func NewSponsorshipRepository(db *gorm.DB) *GormSponsorshipRepository {
	return &GormSponsorshipRepository{db: db}
}

// Transaction 开启事务
func (r *GormSponsorshipRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormSponsorshipRepository) WithTx(tx *gorm.DB) *GormSponsorshipRepository {
	if tx == nil {
		return r
	}
	return &GormSponsorshipRepository{db: tx}
}

// GetRequestByID 按ID获取推广位申请
func (r *GormSponsorshipRepository) GetRequestByID(id uint) (*models.SponsorshipRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.SponsorshipRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetRequestByIDForUpdate 按ID加锁获取推广位申请
func (r *GormSponsorshipRepository) GetRequestByIDForUpdate(id uint) (*models.SponsorshipRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.SponsorshipRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// CreateRequest 创建推广位申请
func (r *GormSponsorshipRepository) CreateRequest(request *models.SponsorshipRequest) error {
	return r.db.Create(request).Error
}

// UpdateRequest 更新推广位申请
func (r *GormSponsorshipRepository) UpdateRequest(request *models.SponsorshipRequest) error {
	return r.db.Save(request).Error
}

// HasOpenRequest 判断同一目标是否已有待处理申请或生效推广位
func (r *GormSponsorshipRepository) HasOpenRequest(vendorID uint, sponsorType string, productID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.SponsorshipRequest{}).
		Where("vendor_id = ? AND type = ? AND status = ?", vendorID, sponsorType, constants.SponsorshipRequestStatusPending)
	if sponsorType == constants.SponsorshipTypeProduct {
		query = query.Where("product_id = ?", productID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	activeQuery := r.db.Model(&models.ActiveSponsor{}).
		Where("vendor_id = ? AND type = ? AND status = ?", vendorID, sponsorType, constants.ActiveSponsorStatusActive)
	if sponsorType == constants.SponsorshipTypeProduct {
		activeQuery = activeQuery.Where("product_id = ?", productID)
	}
	if err := activeQuery.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListRequests 分页查询推广位申请
func (r *GormSponsorshipRepository) ListRequests(filter SponsorshipRequestListFilter) ([]models.SponsorshipRequest, int64, error) {
	query := r.db.Model(&models.SponsorshipRequest{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.SponsorshipRequest
	if err := query.Order("id desc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// GetActiveByID 按ID获取生效推广位
func (r *GormSponsorshipRepository) GetActiveByID(id uint) (*models.ActiveSponsor, error) {
	if id == 0 {
		return nil, nil
	}
	var sponsor models.ActiveSponsor
	if err := r.db.First(&sponsor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sponsor, nil
}

// CreateActive 创建生效推广位
func (r *GormSponsorshipRepository) CreateActive(sponsor *models.ActiveSponsor) error {
	return r.db.Create(sponsor).Error
}

// UpdateActiveStatusIf 带前置状态校验的推广位状态流转
// 返回 false 表示当前状态不匹配，未发生更新。
func (r *GormSponsorshipRepository) UpdateActiveStatusIf(id uint, fromStatus, toStatus string) (bool, error) {
	result := r.db.Model(&models.ActiveSponsor{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActive 分页查询生效推广位
func (r *GormSponsorshipRepository) ListActive(filter ActiveSponsorListFilter) ([]models.ActiveSponsor, int64, error) {
	query := r.db.Model(&models.ActiveSponsor{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var sponsors []models.ActiveSponsor
	if err := query.Order("end_date asc").Find(&sponsors).Error; err != nil {
		return nil, 0, err
	}
	return sponsors, total, nil
}

// ListDue 查询已到期但仍为 active 的推广位
func (r *GormSponsorshipRepository) ListDue(now time.Time, limit int) ([]models.ActiveSponsor, error) {
	if limit <= 0 {
		limit = 100
	}
	var sponsors []models.ActiveSponsor
	if err := r.db.Where("status = ? AND end_date <= ?", constants.ActiveSponsorStatusActive, now).
		Order("end_date asc").Limit(limit).
		Find(&sponsors).Error; err != nil {
		return nil, err
	}
	return sponsors, nil
}
