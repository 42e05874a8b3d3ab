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

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	Items []struct {
		ProductID uint         `json:"product_id" binding:"required"`
		Price     models.Money `json:"price"`
	} `json:"items" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// PlaceOrder 顾客下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID: item.ProductID,
			Price:     item.Price,
		})
	}
	order, err := h.OrderService.PlaceOrder(service.PlaceOrderInput{
		CustomerID:    userID,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder 查询自己的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, svcErr := h.OrderService.GetOrder(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	if order.CustomerID != userID {
		shared.RespondError(c, response.CodeForbidden, "order belongs to another customer", nil)
		return
	}
	response.Success(c, order)
}

// VerifyLicenseRequest 授权密钥核验请求
type VerifyLicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// VerifyLicense 核验授权密钥
func (h *Handler) VerifyLicense(c *gin.Context) {
	var req VerifyLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.OrderService.VerifyLicense(req.LicenseKey)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyOrders 查询自己的订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		CustomerID:    userID,
		PaymentStatus: c.Query("payment_status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
