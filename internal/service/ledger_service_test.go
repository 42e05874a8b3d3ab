package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestAvailableBalance(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	vendor := createLedgerTestVendor(t, db, "balance@example.com", "100.00", "35.50")

	balance, err := svc.AvailableBalance(vendor.ID)
	if err != nil {
		t.Fatalf("available balance failed: %v", err)
	}
	if balance.VendorID != vendor.ID {
		t.Fatalf("expected vendor id %d, got %d", vendor.ID, balance.VendorID)
	}
	if balance.AvailableBalance.String() != "64.50" {
		t.Fatalf("expected available 64.50, got %s", balance.AvailableBalance.String())
	}
	if balance.PendingWithdrawals != 0 {
		t.Fatalf("expected no pending withdrawals, got %d", balance.PendingWithdrawals)
	}

	withdrawal := models.Withdrawal{
		SeqID:       time.Now().UnixNano(),
		VendorID:    vendor.ID,
		Amount:      testMoney(t, "10.00"),
		Status:      constants.WithdrawalStatusPending,
		RequestDate: time.Now(),
	}
	if err := db.Create(&withdrawal).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	balance, err = svc.AvailableBalance(vendor.ID)
	if err != nil {
		t.Fatalf("available balance after withdrawal failed: %v", err)
	}
	if balance.PendingWithdrawals != 1 {
		t.Fatalf("expected 1 pending withdrawal, got %d", balance.PendingWithdrawals)
	}

	if _, err := svc.AvailableBalance(vendor.ID + 999); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestReconcileVendorFixesDrift(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	vendor := createLedgerTestVendor(t, db, "drift@example.com", "999.00", "1.00")

	createLedgerTestTransaction(t, db, vendor.ID, constants.TransactionTypeSale, "30.00", "4.50", "25.50")
	createLedgerTestTransaction(t, db, vendor.ID, constants.TransactionTypeSale, "10.00", "1.50", "8.50")
	createLedgerTestTransaction(t, db, vendor.ID, constants.TransactionTypeWithdrawal, "20.00", "0", "20.00")

	fixed, err := svc.ReconcileVendor(vendor.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !fixed {
		t.Fatalf("expected drift to be corrected")
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if reloaded.TotalEarnings.String() != "34.00" {
		t.Fatalf("expected earnings 34.00, got %s", reloaded.TotalEarnings.String())
	}
	if reloaded.WithdrawnAmount.String() != "20.00" {
		t.Fatalf("expected withdrawn 20.00, got %s", reloaded.WithdrawnAmount.String())
	}

	// 对齐后的再次对账不动任何字段
	fixed, err = svc.ReconcileVendor(vendor.ID)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if fixed {
		t.Fatalf("expected no drift on aligned snapshot")
	}
}

func TestReconcileVendorFixesProductSalesCounter(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	vendor := createLedgerTestVendor(t, db, "sales-drift@example.com", "0", "0")

	product := models.Product{
		SeqID:       time.Now().UnixNano(),
		VendorID:    vendor.ID,
		Slug:        "sales-drift-product",
		Title:       "Sales Drift Product",
		PriceAmount: testMoney(t, "10.00"),
		Status:      constants.ProductStatusApproved,
		IsActive:    true,
		TotalSales:  99,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	order := models.Order{
		SeqID:         time.Now().UnixNano(),
		OrderNo:       fmt.Sprintf("MB%d", time.Now().UnixNano()),
		CustomerID:    1,
		TotalAmount:   testMoney(t, "10.00"),
		PaymentStatus: constants.PaymentStatusCompleted,
		PaymentMethod: constants.PaymentMethodGateway,
		Items: []models.OrderItem{
			{ProductID: product.ID, VendorID: vendor.ID, Title: product.Title, Price: product.PriceAmount},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	fixed, err := svc.ReconcileVendor(vendor.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !fixed {
		t.Fatalf("expected sales drift to be corrected")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if reloaded.TotalSales != 1 {
		t.Fatalf("expected total sales 1, got %d", reloaded.TotalSales)
	}
}

func TestReconcileAllCountsOnlyDriftedVendors(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	drifted := createLedgerTestVendor(t, db, "all-drift@example.com", "500.00", "0")
	aligned := createLedgerTestVendor(t, db, "all-aligned@example.com", "25.50", "0")

	createLedgerTestTransaction(t, db, drifted.ID, constants.TransactionTypeSale, "30.00", "4.50", "25.50")
	createLedgerTestTransaction(t, db, aligned.ID, constants.TransactionTypeSale, "30.00", "4.50", "25.50")

	fixedCount, err := svc.ReconcileAll()
	if err != nil {
		t.Fatalf("reconcile all failed: %v", err)
	}
	if fixedCount != 1 {
		t.Fatalf("expected 1 corrected vendor, got %d", fixedCount)
	}
}

func setupLedgerServiceTest(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.Withdrawal{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewLedgerService(
		repository.NewVendorRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewWithdrawalRepository(db),
	)
	return svc, db
}

func createLedgerTestVendor(t *testing.T, db *gorm.DB, email, earnings, withdrawn string) models.Vendor {
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

func createLedgerTestTransaction(t *testing.T, db *gorm.DB, vendorID uint, txnType, amount, commission, net string) {
	t.Helper()

	txn := models.Transaction{
		SeqID:            time.Now().UnixNano(),
		VendorID:         vendorID,
		Type:             txnType,
		Status:           constants.TransactionStatusCompleted,
		Amount:           testMoney(t, amount),
		CommissionAmount: testMoney(t, commission),
		NetAmount:        testMoney(t, net),
		Reference:        fmt.Sprintf("test:%d:%d", vendorID, time.Now().UnixNano()),
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
}
