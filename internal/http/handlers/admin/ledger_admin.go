package admin

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListTransactions 管理端账本流水列表
func (h *Handler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	vendorID, _ := strconv.ParseUint(c.Query("vendor_id"), 10, 64)
	txns, total, err := h.LedgerService.ListTransactions(repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: uint(vendorID),
		Type:     c.Query("type"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, txns, response.NewPagination(page, pageSize, total))
}

// GetVendorBalance 管理端查询店铺余额
func (h *Handler) GetVendorBalance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid vendor id", nil)
		return
	}
	balance, svcErr := h.LedgerService.AvailableBalance(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, balance)
}

// ReconcileLedger 手动触发账本对账
func (h *Handler) ReconcileLedger(c *gin.Context) {
	fixed, err := h.LedgerService.ReconcileAll()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.Success(c, gin.H{"fixed": fixed})
}

// ListVendors 管理端店铺列表
func (h *Handler) ListVendors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	vendors, total, err := h.VendorRepo.List(repository.VendorListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        c.Query("search"),
		SponsoredOnly: c.Query("sponsored") == "true",
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, vendors, response.NewPagination(page, pageSize, total))
}

// ListUsers 管理端用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// ListOrders 管理端订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 64)
	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		CustomerID:    uint(customerID),
		PaymentStatus: c.Query("payment_status"),
		OrderNo:       c.Query("order_no"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
