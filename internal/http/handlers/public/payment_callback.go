package public

import (
	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentCallbackRequest 外部支付网关回调
// 网关可能重试投递，处理端按引用键幂等。
// 订单以 order_id 或商户订单号 order_no 二选一定位。
type PaymentCallbackRequest struct {
	OrderID       uint   `json:"order_id"`
	OrderNo       string `json:"order_no"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status" binding:"required"`
}

// PaymentCallback 接收支付结果回调
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.OrderID == 0 && req.OrderNo == "" {
		shared.RespondError(c, response.CodeBadRequest, "order_id or order_no required", nil)
		return
	}
	order, err := h.OrderService.HandlePaymentCallback(service.PaymentCallbackInput{
		OrderID:     req.OrderID,
		OrderNo:     req.OrderNo,
		ProviderRef: req.TransactionID,
		Status:      req.Status,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"order_no":       order.OrderNo,
		"payment_status": order.PaymentStatus,
	})
}
