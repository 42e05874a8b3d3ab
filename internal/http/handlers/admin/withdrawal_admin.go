package admin

import (
	"strconv"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// ApproveWithdrawalRequest 提现审批请求
type ApproveWithdrawalRequest struct {
	ProofImage string `json:"proof_image"`
}

// RejectWithdrawalRequest 提现驳回请求
type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListWithdrawals 管理端提现列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	vendorID, _ := strconv.ParseUint(c.Query("vendor_id"), 10, 64)
	withdrawals, total, err := h.WithdrawalService.ListWithdrawals(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: uint(vendorID),
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, withdrawals, response.NewPagination(page, pageSize, total))
}

// ApproveWithdrawal 审批通过提现
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid withdrawal id", nil)
		return
	}
	var req ApproveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	withdrawal, svcErr := h.WithdrawalService.Approve(uint(id), req.ProofImage)
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, withdrawal)
}

// RejectWithdrawal 驳回提现
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid withdrawal id", nil)
		return
	}
	var req RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	withdrawal, svcErr := h.WithdrawalService.Reject(uint(id), req.Reason)
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, withdrawal)
}
