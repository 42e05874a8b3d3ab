package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page          int
	PageSize      int
	VendorID      uint
	Status        string
	Search        string
	OnlyActive    bool
	SponsoredOnly bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	CustomerID    uint
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// TransactionListFilter 查询账本流水列表的过滤条件
type TransactionListFilter struct {
	Page        int
	PageSize    int
	VendorID    uint
	OrderID     uint
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter 查询提现列表的过滤条件
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	VendorID    uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SponsorshipRequestListFilter 查询推广位申请列表的过滤条件
type SponsorshipRequestListFilter struct {
	Page     int
	PageSize int
	VendorID uint
	Type     string
	Status   string
}

// ActiveSponsorListFilter 查询生效推广位列表的过滤条件
type ActiveSponsorListFilter struct {
	Page     int
	PageSize int
	VendorID uint
	Type     string
	Status   string
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	UnreadOnly bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	Status   string
}

// VendorListFilter 查询店铺列表的过滤条件
type VendorListFilter struct {
	Page          int
	PageSize      int
	Search        string
	SponsoredOnly bool
}
