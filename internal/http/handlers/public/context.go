package public

import (
	"github.com/marketbay/internal/http/handlers/shared"
	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUserID 读取认证中间件注入的用户ID
func currentUserID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "user_id")
}

// currentVendor 解析当前登录用户对应的店铺
func (h *Handler) currentVendor(c *gin.Context) (*models.Vendor, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	vendor, err := h.VendorRepo.GetByUserID(userID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "internal error", err)
		return nil, false
	}
	if vendor == nil {
		shared.RespondError(c, response.CodeForbidden, "vendor account required", nil)
		return nil, false
	}
	return vendor, true
}
