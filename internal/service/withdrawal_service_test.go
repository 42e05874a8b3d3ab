package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestRequestWithdrawalValidation(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	vendor := createWithdrawalTestVendor(t, db, "validation@example.com", "100.00", "0")

	paypal := models.BankDetail{Method: constants.BankDetailMethodPaypal, Email: "v@example.com"}

	if _, err := svc.Request(RequestWithdrawalInput{VendorID: vendor.ID, Amount: testMoney(t, "0"), BankDetail: paypal}); !errors.Is(err, ErrWithdrawalInvalidAmount) {
		t.Fatalf("expected ErrWithdrawalInvalidAmount, got %v", err)
	}
	if _, err := svc.Request(RequestWithdrawalInput{VendorID: vendor.ID, Amount: testMoney(t, "5.00"), BankDetail: paypal}); !errors.Is(err, ErrWithdrawalBelowMin) {
		t.Fatalf("expected ErrWithdrawalBelowMin, got %v", err)
	}
	if _, err := svc.Request(RequestWithdrawalInput{
		VendorID:   vendor.ID,
		Amount:     testMoney(t, "20.00"),
		BankDetail: models.BankDetail{Method: constants.BankDetailMethodPaypal},
	}); !errors.Is(err, ErrInvalidBankDetail) {
		t.Fatalf("expected ErrInvalidBankDetail for missing email, got %v", err)
	}
	if _, err := svc.Request(RequestWithdrawalInput{
		VendorID:   vendor.ID,
		Amount:     testMoney(t, "20.00"),
		BankDetail: models.BankDetail{Method: "carrier_pigeon"},
	}); !errors.Is(err, ErrInvalidBankDetail) {
		t.Fatalf("expected ErrInvalidBankDetail for unknown method, got %v", err)
	}
	if _, err := svc.Request(RequestWithdrawalInput{VendorID: vendor.ID, Amount: testMoney(t, "150.00"), BankDetail: paypal}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	withdrawal, err := svc.Request(RequestWithdrawalInput{VendorID: vendor.ID, Amount: testMoney(t, "50.00"), BankDetail: paypal})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if withdrawal.Status != constants.WithdrawalStatusPending {
		t.Fatalf("expected pending status, got %s", withdrawal.Status)
	}
	if withdrawal.BankDetail["method"] != constants.BankDetailMethodPaypal {
		t.Fatalf("expected bank detail snapshot, got %+v", withdrawal.BankDetail)
	}
}

func TestApproveWithdrawalDebitsVendorAndWritesLedger(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	vendor := createWithdrawalTestVendor(t, db, "approve@example.com", "100.00", "0")

	withdrawal := requestTestWithdrawal(t, svc, vendor.ID, "60.00")

	approved, err := svc.Approve(withdrawal.ID, "proof.png")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.ProcessedDate == nil {
		t.Fatalf("expected processed date to be set")
	}
	if approved.ProofImage != "proof.png" {
		t.Fatalf("expected proof image, got %q", approved.ProofImage)
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if !reloaded.WithdrawnAmount.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected withdrawn 60.00, got %s", reloaded.WithdrawnAmount.String())
	}
	if !reloaded.AvailableBalance().Decimal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("expected available 40.00, got %s", reloaded.AvailableBalance().String())
	}

	var txn models.Transaction
	if err := db.Where("withdrawal_id = ?", withdrawal.ID).First(&txn).Error; err != nil {
		t.Fatalf("load withdrawal transaction failed: %v", err)
	}
	if txn.Type != constants.TransactionTypeWithdrawal {
		t.Fatalf("expected withdrawal transaction, got %s", txn.Type)
	}
	if !txn.NetAmount.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected transaction net 60.00, got %s", txn.NetAmount.String())
	}
}

func TestApproveWithdrawalTwiceReturnsStateConflict(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	vendor := createWithdrawalTestVendor(t, db, "double@example.com", "100.00", "0")

	withdrawal := requestTestWithdrawal(t, svc, vendor.ID, "30.00")

	if _, err := svc.Approve(withdrawal.ID, ""); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if _, err := svc.Approve(withdrawal.ID, ""); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("expected ErrWithdrawalNotPending, got %v", err)
	}

	var txnCount int64
	if err := db.Model(&models.Transaction{}).Where("withdrawal_id = ?", withdrawal.ID).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("expected exactly one payout entry, got %d", txnCount)
	}
}

func TestApproveWithdrawalsCannotJointlyOverdraw(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	vendor := createWithdrawalTestVendor(t, db, "overdraw@example.com", "100.00", "0")

	// 两笔申请各自通过请求期校验（余额尚未扣减）
	first := requestTestWithdrawal(t, svc, vendor.ID, "80.00")
	second := requestTestWithdrawal(t, svc, vendor.ID, "80.00")

	if _, err := svc.Approve(first.ID, ""); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if _, err := svc.Approve(second.ID, ""); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// 失败的审批保持 pending，可在余额恢复后重试
	reloaded, err := svc.GetWithdrawal(second.ID)
	if err != nil {
		t.Fatalf("get withdrawal failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawalStatusPending {
		t.Fatalf("expected second withdrawal to stay pending, got %s", reloaded.Status)
	}

	var vendorRow models.Vendor
	if err := db.First(&vendorRow, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if vendorRow.AvailableBalance().Decimal.IsNegative() {
		t.Fatalf("available balance went negative: %s", vendorRow.AvailableBalance().String())
	}
}

func TestRejectWithdrawalLeavesBalanceUntouched(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	vendor := createWithdrawalTestVendor(t, db, "reject@example.com", "100.00", "0")

	withdrawal := requestTestWithdrawal(t, svc, vendor.ID, "40.00")

	rejected, err := svc.Reject(withdrawal.ID, "bank details unverifiable")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
	if rejected.RejectReason != "bank details unverifiable" {
		t.Fatalf("expected reject reason, got %q", rejected.RejectReason)
	}

	var vendorRow models.Vendor
	if err := db.First(&vendorRow, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if !vendorRow.WithdrawnAmount.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected withdrawn 0 after reject, got %s", vendorRow.WithdrawnAmount.String())
	}

	// 终态不可再流转
	if _, err := svc.Approve(withdrawal.ID, ""); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("expected ErrWithdrawalNotPending after reject, got %v", err)
	}
}

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:withdrawal_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.SequenceCounter{},
		&models.User{},
		&models.Vendor{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Commerce.MinWithdrawalAmount = "10.00"

	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewWithdrawalService(
		cfg,
		repository.NewWithdrawalRepository(db),
		repository.NewVendorRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewSequenceRepository(db),
		notifySvc,
	)
	return svc, db
}

func createWithdrawalTestVendor(t *testing.T, db *gorm.DB, email, earnings, withdrawn string) models.Vendor {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         constants.RoleVendor,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	vendor := models.Vendor{
		UserID:          user.ID,
		StoreName:       "store-" + email,
		CommissionRate:  testMoney(t, "15"),
		TotalEarnings:   testMoney(t, earnings),
		WithdrawnAmount: testMoney(t, withdrawn),
	}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}

func requestTestWithdrawal(t *testing.T, svc *WithdrawalService, vendorID uint, amount string) *models.Withdrawal {
	t.Helper()

	withdrawal, err := svc.Request(RequestWithdrawalInput{
		VendorID:   vendorID,
		Amount:     testMoney(t, amount),
		BankDetail: models.BankDetail{Method: constants.BankDetailMethodPaypal, Email: "payout@example.com"},
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	return withdrawal
}
