package constants

// 用户角色常量
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 商品审核状态常量
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
)

// 订单支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 支付方式常量
const (
	PaymentMethodGateway      = "gateway"
	PaymentMethodWallet       = "wallet"
	PaymentMethodBankTransfer = "bank_transfer"
)

// 账务流水类型常量
const (
	TransactionTypeSale       = "sale"
	TransactionTypeWithdrawal = "withdrawal"
)

// 账务流水状态常量
const (
	TransactionStatusCompleted = "completed"
)

// 提现状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// 提现收款方式常量
const (
	BankDetailMethodBankAccount = "bank_account"
	BankDetailMethodPaypal      = "paypal"
	BankDetailMethodUSDT        = "usdt"
)

// 推广位类型常量
const (
	SponsorshipTypeVendor  = "vendor"
	SponsorshipTypeProduct = "product"
)

// 推广位档位常量
const (
	SponsorshipTierStandard = "standard"
	SponsorshipTierPremium  = "premium"
)

// 推广申请状态常量
const (
	SponsorshipRequestStatusPending  = "pending"
	SponsorshipRequestStatusApproved = "approved"
	SponsorshipRequestStatusRejected = "rejected"
)

// 推广位状态常量
const (
	ActiveSponsorStatusActive    = "active"
	ActiveSponsorStatusExpired   = "expired"
	ActiveSponsorStatusCancelled = "cancelled"
)

// 通知类型常量
const (
	NotificationTypeProductApproved     = "product_approved"
	NotificationTypeProductRejected     = "product_rejected"
	NotificationTypeSale                = "sale"
	NotificationTypeOrderCompleted      = "order_completed"
	NotificationTypeOrderFailed         = "order_failed"
	NotificationTypeWithdrawalApproved  = "withdrawal_approved"
	NotificationTypeWithdrawalRejected  = "withdrawal_rejected"
	NotificationTypeSponsorshipApproved = "sponsorship_approved"
	NotificationTypeSponsorshipRejected = "sponsorship_rejected"
	NotificationTypeSponsorshipRemoved  = "sponsorship_removed"
	NotificationTypeSponsorshipExpired  = "sponsorship_expired"
)

// 序列名称常量（序列分配器按实体名发号）
const (
	SequenceOrder              = "order"
	SequenceTransaction        = "transaction"
	SequenceProduct            = "product"
	SequenceWithdrawal         = "withdrawal"
	SequenceSponsorshipRequest = "sponsorship_request"
)

// 异步任务类型常量
const (
	TaskNotificationDispatch = "notification:dispatch"
)

// 队列名称常量
const (
	QueueDefault = "default"
)
