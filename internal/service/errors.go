package service

import "errors"

// 服务层哨兵错误，handler 层据此映射响应码。
var (
	// 通用
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("operation not allowed for requester")

	// 用户
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUserDisabled      = errors.New("user is disabled")

	// 店铺
	ErrVendorNotFound = errors.New("vendor not found")

	// 商品
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotPending    = errors.New("product is not pending review")
	ErrProductNotApproved   = errors.New("product is not approved")
	ErrProductSlugTaken     = errors.New("product slug already exists")
	ErrProductPriceMismatch = errors.New("item price does not match catalog price")

	// 订单
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderEmptyItems    = errors.New("order has no items")
	ErrOrderStatusInvalid = errors.New("order status does not allow this operation")
	ErrLicenseNotFound    = errors.New("license key not found")

	// 提现
	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrWithdrawalNotPending    = errors.New("withdrawal is not pending")
	ErrWithdrawalBelowMin      = errors.New("withdrawal amount below platform minimum")
	ErrWithdrawalInvalidAmount = errors.New("withdrawal amount must be positive")
	ErrInsufficientBalance     = errors.New("insufficient available balance")
	ErrInvalidBankDetail       = errors.New("invalid bank detail")

	// 推广位
	ErrSponsorshipNotFound   = errors.New("sponsorship request not found")
	ErrSponsorshipNotPending = errors.New("sponsorship request is not pending")
	ErrSponsorAlreadyActive  = errors.New("an active sponsorship already exists for this target")
	ErrSponsorNotFound       = errors.New("active sponsorship not found")
	ErrSponsorNotActive      = errors.New("sponsorship is not active")
	ErrSponsorshipFeeUnknown = errors.New("no fee configured for sponsorship type and tier")

	// 通知
	ErrNotificationNotFound = errors.New("notification not found")
)
