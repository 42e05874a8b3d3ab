package public

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"
	"github.com/marketbay/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProductRequest 店铺创建商品请求
type CreateProductRequest struct {
	Title       string             `json:"title" binding:"required"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Price       models.Money       `json:"price" binding:"required"`
	Images      models.StringArray `json:"images"`
	Tags        models.StringArray `json:"tags"`
}

// UpdateProductRequest 店铺更新商品请求
type UpdateProductRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       *models.Money      `json:"price"`
	Images      models.StringArray `json:"images"`
	Tags        models.StringArray `json:"tags"`
	IsActive    *bool              `json:"is_active"`
}

// RequestWithdrawalRequest 店铺申请提现请求
type RequestWithdrawalRequest struct {
	Amount     models.Money      `json:"amount" binding:"required"`
	BankDetail models.BankDetail `json:"bank_detail" binding:"required"`
}

// RequestSponsorshipRequest 店铺申请推广位请求
type RequestSponsorshipRequest struct {
	Type      string `json:"type" binding:"required"`
	Tier      string `json:"tier" binding:"required"`
	ProductID uint   `json:"product_id"`
	Message   string `json:"message"`
}

// CreateVendorProduct 店铺上架商品（进入待审核）
func (h *Handler) CreateVendorProduct(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.CatalogService.CreateProduct(service.CreateProductInput{
		VendorID:    vendor.ID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Tags:        req.Tags,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateVendorProduct 店铺更新自己的商品
func (h *Handler) UpdateVendorProduct(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, svcErr := h.CatalogService.UpdateProduct(service.UpdateProductInput{
		ProductID:   uint(id),
		VendorID:    vendor.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Tags:        req.Tags,
		IsActive:    req.IsActive,
	})
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, product)
}

// ListVendorProducts 店铺商品列表（含待审核与驳回）
func (h *Handler) ListVendorProducts(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	products, total, err := h.CatalogService.ListProducts(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendor.ID,
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetVendorBalance 店铺余额读数
func (h *Handler) GetVendorBalance(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	balance, err := h.LedgerService.AvailableBalance(vendor.ID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, balance)
}

// ListVendorTransactions 店铺账本流水
func (h *Handler) ListVendorTransactions(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	txns, total, err := h.LedgerService.ListTransactions(repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendor.ID,
		Type:     c.Query("type"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, txns, response.NewPagination(page, pageSize, total))
}

// RequestWithdrawal 店铺申请提现
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	withdrawal, err := h.WithdrawalService.Request(service.RequestWithdrawalInput{
		VendorID:   vendor.ID,
		Amount:     req.Amount,
		BankDetail: req.BankDetail,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// ListVendorWithdrawals 店铺提现记录
func (h *Handler) ListVendorWithdrawals(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	withdrawals, total, err := h.WithdrawalService.ListWithdrawals(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendor.ID,
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, withdrawals, response.NewPagination(page, pageSize, total))
}

// RequestSponsorship 店铺申请推广位
func (h *Handler) RequestSponsorship(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	var req RequestSponsorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	request, err := h.SponsorshipService.Request(service.RequestSponsorshipInput{
		VendorID:  vendor.ID,
		Type:      req.Type,
		Tier:      req.Tier,
		ProductID: req.ProductID,
		Message:   req.Message,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// ListVendorSponsorships 店铺推广位申请记录
func (h *Handler) ListVendorSponsorships(c *gin.Context) {
	vendor, ok := h.currentVendor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	requests, total, err := h.SponsorshipService.ListRequests(repository.SponsorshipRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendor.ID,
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, requests, response.NewPagination(page, pageSize, total))
}
