package models

import (
	"time"
)

// BankDetail 提现收款方式
// 按 Method 取不同字段：bank_account 用 AccountName/AccountNumber/BankName，
// paypal 用 Email，usdt 用 WalletAddress。
type BankDetail struct {
	Method        string `json:"method"`                   // 收款方式 bank_account/paypal/usdt
	AccountName   string `json:"account_name,omitempty"`   // 开户名
	AccountNumber string `json:"account_number,omitempty"` // 银行账号
	BankName      string `json:"bank_name,omitempty"`      // 银行名称
	Email         string `json:"email,omitempty"`          // PayPal 邮箱
	WalletAddress string `json:"wallet_address,omitempty"` // USDT 钱包地址
}

// Withdrawal 提现申请表
type Withdrawal struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                 // 主键
	SeqID         int64      `gorm:"uniqueIndex;not null" json:"seq_id"`                   // 业务序号
	VendorID      uint       `gorm:"index;not null" json:"vendor_id"`                      // 店铺ID
	Amount        Money      `gorm:"type:decimal(20,2);not null" json:"amount"`            // 提现金额
	Status        string     `gorm:"size:32;index;not null;default:'pending'" json:"status"` // 状态 pending/approved/rejected
	BankDetail    JSON       `gorm:"type:text" json:"bank_detail"`                         // 收款方式快照
	ProofImage    string     `gorm:"size:255" json:"proof_image,omitempty"`                // 打款凭证
	RejectReason  string     `gorm:"size:255" json:"reject_reason,omitempty"`              // 驳回原因
	RequestDate   time.Time  `gorm:"index" json:"request_date"`                            // 申请时间
	ProcessedDate *time.Time `json:"processed_date,omitempty"`                             // 处理时间
	CreatedAt     time.Time  `json:"created_at"`                                           // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (Withdrawal) TableName() string {
	return "withdrawals"
}
