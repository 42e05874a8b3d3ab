package public

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts 公开商品列表，仅展示已上架商品
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	vendorID, _ := strconv.ParseUint(c.Query("vendor_id"), 10, 64)
	filter := repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		VendorID:      uint(vendorID),
		Search:        c.Query("search"),
		OnlyActive:    true,
		SponsoredOnly: c.Query("sponsored") == "true",
	}
	products, total, err := h.CatalogService.ListProducts(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 公开商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	product, svcErr := h.CatalogService.GetProduct(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, product)
}
