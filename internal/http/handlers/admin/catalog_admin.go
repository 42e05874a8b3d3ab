package admin

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// RejectProductRequest 商品驳回请求
type RejectProductRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListProducts 管理端商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	vendorID, _ := strconv.ParseUint(c.Query("vendor_id"), 10, 64)
	products, total, err := h.CatalogService.ListProducts(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: uint(vendorID),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// ApproveProduct 审核通过商品
func (h *Handler) ApproveProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	product, svcErr := h.CatalogService.ApproveProduct(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, product)
}

// RejectProduct 审核驳回商品
func (h *Handler) RejectProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	var req RejectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, svcErr := h.CatalogService.RejectProduct(uint(id), req.Reason)
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, product)
}
