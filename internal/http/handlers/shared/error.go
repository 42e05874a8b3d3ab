package shared

import (
	"errors"

	"github.com/marketbay/internal/http/response"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// MappedError 业务错误到接口错误码的映射关系。
type MappedError struct {
	Target error
	Code   int
}

// 服务层哨兵错误的统一响应码映射。
var serviceErrorRules = []MappedError{
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest},
	{Target: service.ErrOrderEmptyItems, Code: response.CodeBadRequest},
	{Target: service.ErrProductPriceMismatch, Code: response.CodeBadRequest},
	{Target: service.ErrProductNotApproved, Code: response.CodeBadRequest},
	{Target: service.ErrWithdrawalBelowMin, Code: response.CodeBadRequest},
	{Target: service.ErrWithdrawalInvalidAmount, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidBankDetail, Code: response.CodeBadRequest},
	{Target: service.ErrSponsorshipFeeUnknown, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidCredential, Code: response.CodeUnauthorized},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden},
	{Target: service.ErrForbidden, Code: response.CodeForbidden},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound},
	{Target: service.ErrVendorNotFound, Code: response.CodeNotFound},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound},
	{Target: service.ErrLicenseNotFound, Code: response.CodeNotFound},
	{Target: service.ErrWithdrawalNotFound, Code: response.CodeNotFound},
	{Target: service.ErrSponsorshipNotFound, Code: response.CodeNotFound},
	{Target: service.ErrSponsorNotFound, Code: response.CodeNotFound},
	{Target: service.ErrNotificationNotFound, Code: response.CodeNotFound},
	{Target: service.ErrEmailTaken, Code: response.CodeConflict},
	{Target: service.ErrProductSlugTaken, Code: response.CodeConflict},
	{Target: service.ErrProductNotPending, Code: response.CodeConflict},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeConflict},
	{Target: service.ErrWithdrawalNotPending, Code: response.CodeConflict},
	{Target: service.ErrInsufficientBalance, Code: response.CodeConflict},
	{Target: service.ErrSponsorshipNotPending, Code: response.CodeConflict},
	{Target: service.ErrSponsorAlreadyActive, Code: response.CodeConflict},
	{Target: service.ErrSponsorNotActive, Code: response.CodeConflict},
}

// RespondServiceError 将服务层错误映射为统一错误响应。
func RespondServiceError(c *gin.Context, err error) {
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Target.Error(), nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, "internal error", err)
}
