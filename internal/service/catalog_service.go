package service

import (
	"fmt"
	"strings"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogService 商品目录服务
// 负责商品上架与审核状态机：pending -> approved / pending -> rejected，均为终态。
type CatalogService struct {
	productRepo  repository.ProductRepository
	vendorRepo   repository.VendorRepository
	sequenceRepo repository.SequenceRepository
	notifySvc    *NotificationService
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	VendorID    uint
	Title       string
	Slug        string
	Description string
	Price       models.Money
	Images      models.StringArray
	Tags        models.StringArray
}

// UpdateProductInput 更新商品输入
type UpdateProductInput struct {
	ProductID   uint
	VendorID    uint
	Title       string
	Description string
	Price       *models.Money
	Images      models.StringArray
	Tags        models.StringArray
	IsActive    *bool
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(
	productRepo repository.ProductRepository,
	vendorRepo repository.VendorRepository,
	sequenceRepo repository.SequenceRepository,
	notifySvc *NotificationService,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		vendorRepo:   vendorRepo,
		sequenceRepo: sequenceRepo,
		notifySvc:    notifySvc,
	}
}

// CreateProduct 创建商品，初始状态为 pending
func (s *CatalogService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	title := strings.TrimSpace(input.Title)
	if input.VendorID == 0 || title == "" {
		return nil, ErrInvalidInput
	}
	if input.Price.Decimal.LessThan(decimal.Zero) {
		return nil, ErrInvalidInput
	}
	vendor, err := s.vendorRepo.GetByID(input.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}

	slug := strings.TrimSpace(input.Slug)
	if slug != "" {
		existing, err := s.productRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrProductSlugTaken
		}
	}

	// 序号分配失败时不创建实体
	seqID, err := s.sequenceRepo.Next(constants.SequenceProduct)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		slug = fmt.Sprintf("p-%d", seqID)
	}

	product := &models.Product{
		SeqID:       seqID,
		VendorID:    input.VendorID,
		Slug:        slug,
		Title:       title,
		Description: input.Description,
		PriceAmount: input.Price,
		Images:      input.Images,
		Tags:        input.Tags,
		Status:      constants.ProductStatusPending,
		IsActive:    true,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_submitted_for_review", "product_id", product.ID, "seq_id", seqID, "vendor_id", input.VendorID)
	return product, nil
}

// UpdateProduct 店铺更新自己的商品（不触碰审核状态与销量）
func (s *CatalogService) UpdateProduct(input UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if input.VendorID != 0 && product.VendorID != input.VendorID {
		return nil, ErrForbidden
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		product.Title = title
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.Decimal.LessThan(decimal.Zero) {
			return nil, ErrInvalidInput
		}
		product.PriceAmount = *input.Price
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// ApproveProduct 审核通过商品
// 只允许 pending -> approved，并发或重复审核返回状态冲突。
func (s *CatalogService) ApproveProduct(productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	updated, err := s.productRepo.UpdateStatusIf(productID, constants.ProductStatusPending, constants.ProductStatusApproved, "")
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrProductNotPending
	}
	logger.Infow("product_approved", "product_id", productID, "vendor_id", product.VendorID)

	s.notifyVendorOwner(product.VendorID, CreateNotificationInput{
		Type:    constants.NotificationTypeProductApproved,
		Title:   "Product approved",
		Content: fmt.Sprintf("Your product %q has been approved and is now live.", product.Title),
		Link:    fmt.Sprintf("/vendor/products/%d", product.ID),
		Payload: models.JSON{"product_id": product.ID},
	})
	return s.productRepo.GetByID(productID)
}

// RejectProduct 审核驳回商品
func (s *CatalogService) RejectProduct(productID uint, reason string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	updated, err := s.productRepo.UpdateStatusIf(productID, constants.ProductStatusPending, constants.ProductStatusRejected, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrProductNotPending
	}
	logger.Infow("product_rejected", "product_id", productID, "vendor_id", product.VendorID, "reason", reason)

	s.notifyVendorOwner(product.VendorID, CreateNotificationInput{
		Type:    constants.NotificationTypeProductRejected,
		Title:   "Product rejected",
		Content: fmt.Sprintf("Your product %q was rejected: %s", product.Title, strings.TrimSpace(reason)),
		Link:    fmt.Sprintf("/vendor/products/%d", product.ID),
		Payload: models.JSON{"product_id": product.ID},
	})
	return s.productRepo.GetByID(productID)
}

// GetProduct 按ID查询商品
func (s *CatalogService) GetProduct(productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListProducts 查询商品列表
func (s *CatalogService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// notifyVendorOwner 将通知投递到店铺归属用户
func (s *CatalogService) notifyVendorOwner(vendorID uint, input CreateNotificationInput) {
	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil || vendor == nil {
		logger.Warnw("notify_vendor_owner_lookup_failed", "vendor_id", vendorID, "error", err)
		return
	}
	input.UserID = vendor.UserID
	s.notifySvc.Notify(input)
}
