package admin

import (
	"strconv"
	"time"

	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/repository"

	"github.com/gin-gonic/gin"
)

// RejectSponsorshipRequest 推广位驳回请求
type RejectSponsorshipRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListSponsorshipRequests 管理端推广位申请列表
func (h *Handler) ListSponsorshipRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	requests, total, err := h.SponsorshipService.ListRequests(repository.SponsorshipRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, requests, response.NewPagination(page, pageSize, total))
}

// ApproveSponsorship 审批通过推广位申请
func (h *Handler) ApproveSponsorship(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}
	sponsor, svcErr := h.SponsorshipService.Approve(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, sponsor)
}

// RejectSponsorship 驳回推广位申请
func (h *Handler) RejectSponsorship(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}
	var req RejectSponsorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	request, svcErr := h.SponsorshipService.Reject(uint(id), req.Reason)
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, request)
}

// ListActiveSponsors 管理端生效推广位列表
func (h *Handler) ListActiveSponsors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	sponsors, total, err := h.SponsorshipService.ListActive(repository.ActiveSponsorListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.SuccessWithPage(c, sponsors, response.NewPagination(page, pageSize, total))
}

// RemoveActiveSponsor 手工下线生效推广位
func (h *Handler) RemoveActiveSponsor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid sponsor id", nil)
		return
	}
	sponsor, svcErr := h.SponsorshipService.RemoveManually(uint(id))
	if svcErr != nil {
		shared.RespondServiceError(c, svcErr)
		return
	}
	response.Success(c, sponsor)
}

// RunSponsorshipExpiry 手动触发到期巡检
func (h *Handler) RunSponsorshipExpiry(c *gin.Context) {
	expired, err := h.SponsorshipService.ExpireDue(time.Now())
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return
	}
	response.Success(c, gin.H{"expired": expired})
}
