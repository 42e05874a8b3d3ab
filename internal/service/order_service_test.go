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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	_, err := svc.PlaceOrder(PlaceOrderInput{CustomerID: 1})
	if !errors.Is(err, ErrOrderEmptyItems) {
		t.Fatalf("expected ErrOrderEmptyItems, got %v", err)
	}
}

func TestPlaceOrderRejectsPriceMismatch(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "mismatch@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "mismatch-product", "10.00", constants.ProductStatusApproved, true)

	_, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 1,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "9.99")},
		},
	})
	if !errors.Is(err, ErrProductPriceMismatch) {
		t.Fatalf("expected ErrProductPriceMismatch, got %v", err)
	}
}

func TestPlaceOrderRejectsUnapprovedProduct(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "unapproved@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "pending-product", "10.00", constants.ProductStatusPending, true)

	_, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 1,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "10.00")},
		},
	})
	if !errors.Is(err, ErrProductNotApproved) {
		t.Fatalf("expected ErrProductNotApproved, got %v", err)
	}

	inactive := createOrderTestProduct(t, db, vendor.ID, "inactive-product", "10.00", constants.ProductStatusApproved, false)
	_, err = svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 1,
		Items: []OrderItemInput{
			{ProductID: inactive.ID, Price: testMoney(t, "10.00")},
		},
	})
	if !errors.Is(err, ErrProductNotApproved) {
		t.Fatalf("expected ErrProductNotApproved for inactive product, got %v", err)
	}
}

func TestPlaceOrderSnapshotsCatalogPrice(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "snapshot@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "snapshot-product", "10.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 7,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("expected pending payment status, got %s", order.PaymentStatus)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", order.TotalAmount.String())
	}
	if order.OrderNo == "" || order.SeqID == 0 {
		t.Fatalf("expected order no and seq id, got %q / %d", order.OrderNo, order.SeqID)
	}

	// 下单后改价不影响已创建订单
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price_amount", "99.00").Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	reloaded, err := svc.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if !reloaded.TotalAmount.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected frozen total 10.00, got %s", reloaded.TotalAmount.String())
	}
}

func TestCompletePaymentCreditsVendorWithCommission(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "commission@example.com", "15")
	basic := createOrderTestProduct(t, db, vendor.ID, "basic", "10.00", constants.ProductStatusApproved, true)
	pro := createOrderTestProduct(t, db, vendor.ID, "pro", "20.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 3,
		Items: []OrderItemInput{
			{ProductID: basic.ID, Price: testMoney(t, "10.00")},
			{ProductID: pro.ID, Price: testMoney(t, "20.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	completed, err := svc.CompletePayment(order.ID, "gw-ref-1")
	if err != nil {
		t.Fatalf("complete payment failed: %v", err)
	}
	if completed.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected completed status, got %s", completed.PaymentStatus)
	}
	if completed.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}

	var txns []models.Transaction
	if err := db.Where("order_id = ?", order.ID).Find(&txns).Error; err != nil {
		t.Fatalf("load transactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected single aggregated sale transaction, got %d", len(txns))
	}
	txn := txns[0]
	if !txn.Amount.Decimal.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected amount 30, got %s", txn.Amount.String())
	}
	if !txn.CommissionAmount.Decimal.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected commission 4.50, got %s", txn.CommissionAmount.String())
	}
	if !txn.NetAmount.Decimal.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected net 25.50, got %s", txn.NetAmount.String())
	}

	var reloadedVendor models.Vendor
	if err := db.First(&reloadedVendor, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if !reloadedVendor.TotalEarnings.Decimal.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected vendor earnings 25.50, got %s", reloadedVendor.TotalEarnings.String())
	}

	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, basic.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if reloadedProduct.TotalSales != 1 {
		t.Fatalf("expected total sales 1, got %d", reloadedProduct.TotalSales)
	}
}

func TestCompletePaymentIssuesUniqueLicenseKeys(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "license@example.com", "10")
	product := createOrderTestProduct(t, db, vendor.ID, "license-product", "10.00", constants.ProductStatusApproved, true)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		order, err := svc.PlaceOrder(PlaceOrderInput{
			CustomerID: 5,
			Items: []OrderItemInput{
				{ProductID: product.ID, Price: testMoney(t, "10.00")},
				{ProductID: product.ID, Price: testMoney(t, "10.00")},
			},
		})
		if err != nil {
			t.Fatalf("place order failed: %v", err)
		}
		if _, err := svc.CompletePayment(order.ID, ""); err != nil {
			t.Fatalf("complete payment failed: %v", err)
		}

		var items []models.OrderItem
		if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			t.Fatalf("load items failed: %v", err)
		}
		for _, item := range items {
			if item.LicenseKey == nil || *item.LicenseKey == "" {
				t.Fatalf("expected license key on item %d", item.ID)
			}
			if seen[*item.LicenseKey] {
				t.Fatalf("duplicate license key %s", *item.LicenseKey)
			}
			seen[*item.LicenseKey] = true
		}
	}
}

func TestCompletePaymentReplayDoesNotDoubleCredit(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "replay@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "replay-product", "30.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 2,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "30.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := svc.CompletePayment(order.ID, "gw-1"); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}

	var items []models.OrderItem
	if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	firstKey := *items[0].LicenseKey

	// 回调重放
	if _, err := svc.CompletePayment(order.ID, "gw-1"); err != nil {
		t.Fatalf("replayed callback failed: %v", err)
	}

	var txnCount int64
	if err := db.Model(&models.Transaction{}).Where("order_id = ?", order.ID).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("expected 1 transaction after replay, got %d", txnCount)
	}

	var reloadedVendor models.Vendor
	if err := db.First(&reloadedVendor, vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if !reloadedVendor.TotalEarnings.Decimal.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected earnings 25.50 after replay, got %s", reloadedVendor.TotalEarnings.String())
	}

	if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		t.Fatalf("reload items failed: %v", err)
	}
	if *items[0].LicenseKey != firstKey {
		t.Fatalf("license key changed on replay: %s -> %s", firstKey, *items[0].LicenseKey)
	}
}

func TestCompletePaymentSplitsCreditsPerVendor(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendorA := createOrderTestVendor(t, db, "vendor-a@example.com", "10")
	vendorB := createOrderTestVendor(t, db, "vendor-b@example.com", "20")
	productA := createOrderTestProduct(t, db, vendorA.ID, "product-a", "10.00", constants.ProductStatusApproved, true)
	productB := createOrderTestProduct(t, db, vendorB.ID, "product-b", "20.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 4,
		Items: []OrderItemInput{
			{ProductID: productA.ID, Price: testMoney(t, "10.00")},
			{ProductID: productB.ID, Price: testMoney(t, "20.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if _, err := svc.CompletePayment(order.ID, ""); err != nil {
		t.Fatalf("complete payment failed: %v", err)
	}

	var txns []models.Transaction
	if err := db.Where("order_id = ?", order.ID).Order("vendor_id").Find(&txns).Error; err != nil {
		t.Fatalf("load transactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected one transaction per vendor, got %d", len(txns))
	}
	if !txns[0].NetAmount.Decimal.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("expected vendor A net 9.00, got %s", txns[0].NetAmount.String())
	}
	if !txns[1].NetAmount.Decimal.Equal(decimal.RequireFromString("16.00")) {
		t.Fatalf("expected vendor B net 16.00, got %s", txns[1].NetAmount.String())
	}
}

func TestFailPaymentTransitionsAndReplay(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "fail@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "fail-product", "10.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 6,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	failed, err := svc.FailPayment(order.ID)
	if err != nil {
		t.Fatalf("fail payment failed: %v", err)
	}
	if failed.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %s", failed.PaymentStatus)
	}

	// 失败回调重放为空操作
	if _, err := svc.FailPayment(order.ID); err != nil {
		t.Fatalf("replayed fail callback should be a no-op, got %v", err)
	}

	// 已失败订单不可再置为完成
	if _, err := svc.CompletePayment(order.ID, ""); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}

	var txnCount int64
	if err := db.Model(&models.Transaction{}).Where("order_id = ?", order.ID).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if txnCount != 0 {
		t.Fatalf("expected no ledger entries for failed order, got %d", txnCount)
	}
}

func TestHandlePaymentCallbackRejectsUnknownStatus(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	_, err := svc.HandlePaymentCallback(PaymentCallbackInput{OrderID: 1, Status: "refunded_maybe"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHandlePaymentCallbackResolvesOrderByNo(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "by-no@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "by-no-product", "10.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 8,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	completed, err := svc.HandlePaymentCallback(PaymentCallbackInput{
		OrderNo:     order.OrderNo,
		ProviderRef: "gw-by-no",
		Status:      constants.PaymentStatusCompleted,
	})
	if err != nil {
		t.Fatalf("callback by order no failed: %v", err)
	}
	if completed.ID != order.ID || completed.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected order %d completed, got %d %s", order.ID, completed.ID, completed.PaymentStatus)
	}

	_, err = svc.HandlePaymentCallback(PaymentCallbackInput{
		OrderNo: "MB00000000000000",
		Status:  constants.PaymentStatusCompleted,
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for unknown order no, got %v", err)
	}
}

func TestVerifyLicense(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	vendor := createOrderTestVendor(t, db, "verify@example.com", "15")
	product := createOrderTestProduct(t, db, vendor.ID, "verify-product", "10.00", constants.ProductStatusApproved, true)

	order, err := svc.PlaceOrder(PlaceOrderInput{
		CustomerID: 9,
		Items: []OrderItemInput{
			{ProductID: product.ID, Price: testMoney(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if _, err := svc.CompletePayment(order.ID, "gw-verify"); err != nil {
		t.Fatalf("complete payment failed: %v", err)
	}

	items, err := repository.NewOrderRepository(db).GetItemsByOrderID(order.ID)
	if err != nil || len(items) != 1 || items[0].LicenseKey == nil {
		t.Fatalf("expected one item with license key, got %v / %v", items, err)
	}

	result, err := svc.VerifyLicense(*items[0].LicenseKey)
	if err != nil {
		t.Fatalf("verify license failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid license for completed order")
	}
	if result.ProductID != product.ID || result.OrderNo != order.OrderNo {
		t.Fatalf("expected product %d order %s, got %d %s", product.ID, order.OrderNo, result.ProductID, result.OrderNo)
	}
	if result.IssuedAt == nil {
		t.Fatalf("expected issued_at from paid order")
	}

	if _, err := svc.VerifyLicense("NOT-A-REAL-KEY"); !errors.Is(err, ErrLicenseNotFound) {
		t.Fatalf("expected ErrLicenseNotFound, got %v", err)
	}
	if _, err := svc.VerifyLicense("  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank key, got %v", err)
	}
}

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.SequenceCounter{},
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewVendorRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewSequenceRepository(db),
		notifySvc,
	)
	return svc, db
}

func createOrderTestVendor(t *testing.T, db *gorm.DB, email, commissionRate string) models.Vendor {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "vendor owner",
		Role:         constants.RoleVendor,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	vendor := models.Vendor{
		UserID:         user.ID,
		StoreName:      "store-" + email,
		CommissionRate: testMoney(t, commissionRate),
	}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}

func createOrderTestProduct(t *testing.T, db *gorm.DB, vendorID uint, slug, price, status string, active bool) models.Product {
	t.Helper()

	product := models.Product{
		SeqID:       time.Now().UnixNano(),
		VendorID:    vendorID,
		Slug:        slug,
		Title:       slug,
		PriceAmount: testMoney(t, price),
		Status:      status,
		IsActive:    active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func testMoney(t *testing.T, raw string) models.Money {
	t.Helper()

	money, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("invalid money literal %q: %v", raw, err)
	}
	return money
}
