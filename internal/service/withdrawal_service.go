package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService 提现服务
// 审批时在店铺行锁内重算余额后再扣减，两笔审批永远无法联合透支。
type WithdrawalService struct {
	cfg            *config.Config
	withdrawalRepo repository.WithdrawalRepository
	vendorRepo     repository.VendorRepository
	txnRepo        repository.TransactionRepository
	sequenceRepo   repository.SequenceRepository
	notifySvc      *NotificationService
}

// RequestWithdrawalInput 申请提现输入
type RequestWithdrawalInput struct {
	VendorID   uint
	Amount     models.Money
	BankDetail models.BankDetail
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	cfg *config.Config,
	withdrawalRepo repository.WithdrawalRepository,
	vendorRepo repository.VendorRepository,
	txnRepo repository.TransactionRepository,
	sequenceRepo repository.SequenceRepository,
	notifySvc *NotificationService,
) *WithdrawalService {
	return &WithdrawalService{
		cfg:            cfg,
		withdrawalRepo: withdrawalRepo,
		vendorRepo:     vendorRepo,
		txnRepo:        txnRepo,
		sequenceRepo:   sequenceRepo,
		notifySvc:      notifySvc,
	}
}

// Request 申请提现
// 申请时校验余额只是快速失败，真正的余额保障在审批时的原子重查。
func (s *WithdrawalService) Request(input RequestWithdrawalInput) (*models.Withdrawal, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWithdrawalInvalidAmount
	}
	minimum, err := decimal.NewFromString(s.cfg.Commerce.MinWithdrawalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid min withdrawal amount %q: %w", s.cfg.Commerce.MinWithdrawalAmount, err)
	}
	if amount.LessThan(minimum) {
		return nil, ErrWithdrawalBelowMin
	}
	if err := validateBankDetail(input.BankDetail); err != nil {
		return nil, err
	}

	vendor, err := s.vendorRepo.GetByID(input.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if amount.GreaterThan(vendor.AvailableBalance().Decimal) {
		return nil, ErrInsufficientBalance
	}

	// 序号分配失败时不创建实体
	seqID, err := s.sequenceRepo.Next(constants.SequenceWithdrawal)
	if err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		SeqID:       seqID,
		VendorID:    input.VendorID,
		Amount:      models.NewMoneyFromDecimal(amount),
		Status:      constants.WithdrawalStatusPending,
		BankDetail:  bankDetailToJSON(input.BankDetail),
		RequestDate: time.Now(),
	}
	if err := s.withdrawalRepo.Create(withdrawal); err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_requested",
		"withdrawal_id", withdrawal.ID,
		"vendor_id", input.VendorID,
		"amount", withdrawal.Amount.String(),
	)
	return withdrawal, nil
}

// Approve 审批通过提现
// 提现行锁保证同一申请只被处理一次；店铺行锁内重查余额，
// 不足则报 InsufficientBalance 并保持 pending 供管理员重试或驳回。
func (s *WithdrawalService) Approve(withdrawalID uint, proofImage string) (*models.Withdrawal, error) {
	if withdrawalID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	var vendorUserID uint
	var approvedAmount models.Money

	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)
		sequenceRepo := s.sequenceRepo.WithTx(tx)

		withdrawal, err := withdrawalRepo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return ErrWithdrawalNotFound
		}
		if withdrawal.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		vendor, err := vendorRepo.GetByIDForUpdate(withdrawal.VendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}

		amount := withdrawal.Amount.Decimal.Round(2)
		if amount.GreaterThan(vendor.AvailableBalance().Decimal) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		withdrawal.Status = constants.WithdrawalStatusApproved
		withdrawal.ProcessedDate = &now
		withdrawal.ProofImage = strings.TrimSpace(proofImage)
		if err := withdrawalRepo.Update(withdrawal); err != nil {
			return err
		}

		vendor.WithdrawnAmount = models.NewMoneyFromDecimal(vendor.WithdrawnAmount.Decimal.Add(amount))
		if err := vendorRepo.Update(vendor); err != nil {
			return err
		}

		txnSeq, err := sequenceRepo.Next(constants.SequenceTransaction)
		if err != nil {
			return err
		}
		txn := &models.Transaction{
			SeqID:        txnSeq,
			VendorID:     vendor.ID,
			WithdrawalID: withdrawal.ID,
			Type:         constants.TransactionTypeWithdrawal,
			Status:       constants.TransactionStatusCompleted,
			Amount:       models.NewMoneyFromDecimal(amount),
			NetAmount:    models.NewMoneyFromDecimal(amount),
			Reference:    buildWithdrawalReference(withdrawal.ID),
			Description:  fmt.Sprintf("Withdrawal #%d payout", withdrawal.SeqID),
		}
		if err := txnRepo.Create(txn); err != nil {
			return err
		}

		vendorUserID = vendor.UserID
		approvedAmount = withdrawal.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifySvc.Notify(CreateNotificationInput{
		UserID:  vendorUserID,
		Type:    constants.NotificationTypeWithdrawalApproved,
		Title:   "Withdrawal approved",
		Content: fmt.Sprintf("Your withdrawal of %s has been approved and paid out.", approvedAmount.String()),
		Link:    "/vendor/withdrawals",
		Payload: models.JSON{"withdrawal_id": withdrawalID},
	})
	logger.Infow("withdrawal_approved", "withdrawal_id", withdrawalID, "amount", approvedAmount.String())
	return s.withdrawalRepo.GetByID(withdrawalID)
}

// Reject 驳回提现，不触碰余额
func (s *WithdrawalService) Reject(withdrawalID uint, reason string) (*models.Withdrawal, error) {
	if withdrawalID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	var vendorUserID uint

	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		withdrawal, err := withdrawalRepo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return ErrWithdrawalNotFound
		}
		if withdrawal.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}
		now := time.Now()
		withdrawal.Status = constants.WithdrawalStatusRejected
		withdrawal.ProcessedDate = &now
		withdrawal.RejectReason = strings.TrimSpace(reason)
		if err := withdrawalRepo.Update(withdrawal); err != nil {
			return err
		}

		vendor, err := s.vendorRepo.WithTx(tx).GetByID(withdrawal.VendorID)
		if err != nil {
			return err
		}
		if vendor != nil {
			vendorUserID = vendor.UserID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if vendorUserID != 0 {
		s.notifySvc.Notify(CreateNotificationInput{
			UserID:  vendorUserID,
			Type:    constants.NotificationTypeWithdrawalRejected,
			Title:   "Withdrawal rejected",
			Content: fmt.Sprintf("Your withdrawal request was rejected: %s", strings.TrimSpace(reason)),
			Link:    "/vendor/withdrawals",
			Payload: models.JSON{"withdrawal_id": withdrawalID},
		})
	}
	logger.Infow("withdrawal_rejected", "withdrawal_id", withdrawalID, "reason", reason)
	return s.withdrawalRepo.GetByID(withdrawalID)
}

// GetWithdrawal 按ID查询提现申请
func (s *WithdrawalService) GetWithdrawal(withdrawalID uint) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrWithdrawalNotFound
	}
	return withdrawal, nil
}

// ListWithdrawals 查询提现列表
func (s *WithdrawalService) ListWithdrawals(filter repository.WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	return s.withdrawalRepo.List(filter)
}

// validateBankDetail 按收款方式校验对应字段
func validateBankDetail(detail models.BankDetail) error {
	switch detail.Method {
	case constants.BankDetailMethodBankAccount:
		if strings.TrimSpace(detail.AccountName) == "" ||
			strings.TrimSpace(detail.AccountNumber) == "" ||
			strings.TrimSpace(detail.BankName) == "" {
			return ErrInvalidBankDetail
		}
	case constants.BankDetailMethodPaypal:
		if strings.TrimSpace(detail.Email) == "" {
			return ErrInvalidBankDetail
		}
	case constants.BankDetailMethodUSDT:
		if strings.TrimSpace(detail.WalletAddress) == "" {
			return ErrInvalidBankDetail
		}
	default:
		return ErrInvalidBankDetail
	}
	return nil
}

// bankDetailToJSON 将收款方式快照为 JSON 存储
func bankDetailToJSON(detail models.BankDetail) models.JSON {
	result := models.JSON{"method": detail.Method}
	switch detail.Method {
	case constants.BankDetailMethodBankAccount:
		result["account_name"] = detail.AccountName
		result["account_number"] = detail.AccountNumber
		result["bank_name"] = detail.BankName
	case constants.BankDetailMethodPaypal:
		result["email"] = detail.Email
	case constants.BankDetailMethodUSDT:
		result["wallet_address"] = detail.WalletAddress
	}
	return result
}

// buildWithdrawalReference 构建提现流水幂等引用键
func buildWithdrawalReference(withdrawalID uint) string {
	return fmt.Sprintf("withdrawal:%d", withdrawalID)
}
