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

func TestCreateProductStartsPendingWithSequence(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	vendor := createCatalogTestVendor(t, db, "create@example.com")

	product, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "License Pack",
		Price:    testMoney(t, "19.90"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Status != constants.ProductStatusPending {
		t.Fatalf("expected pending, got %s", product.Status)
	}
	if product.SeqID == 0 {
		t.Fatalf("expected sequence id to be allocated")
	}
	if product.Slug != fmt.Sprintf("p-%d", product.SeqID) {
		t.Fatalf("expected default slug p-%d, got %s", product.SeqID, product.Slug)
	}

	second, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "Second Pack",
		Price:    testMoney(t, "5.00"),
	})
	if err != nil {
		t.Fatalf("create second product failed: %v", err)
	}
	if second.SeqID <= product.SeqID {
		t.Fatalf("expected increasing sequence, got %d then %d", product.SeqID, second.SeqID)
	}
}

func TestCreateProductRejectsTakenSlug(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	vendor := createCatalogTestVendor(t, db, "slug@example.com")

	if _, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "First",
		Slug:     "shared-slug",
		Price:    testMoney(t, "10.00"),
	}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	_, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "Second",
		Slug:     "shared-slug",
		Price:    testMoney(t, "10.00"),
	})
	if !errors.Is(err, ErrProductSlugTaken) {
		t.Fatalf("expected ErrProductSlugTaken, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	vendor := createCatalogTestVendor(t, db, "validate@example.com")

	if _, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "   ",
		Price:    testMoney(t, "10.00"),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}

	if _, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "Negative",
		Price:    testMoney(t, "-1.00"),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}

	if _, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID + 999,
		Title:    "Ghost Vendor",
		Price:    testMoney(t, "10.00"),
	}); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestApproveProductIsTerminal(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	vendor := createCatalogTestVendor(t, db, "approve@example.com")

	product, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "Pending Item",
		Price:    testMoney(t, "10.00"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	approved, err := svc.ApproveProduct(product.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.ProductStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	// 审批是终态，重复操作与反向操作都拒绝
	if _, err := svc.ApproveProduct(product.ID); !errors.Is(err, ErrProductNotPending) {
		t.Fatalf("expected ErrProductNotPending on re-approve, got %v", err)
	}
	if _, err := svc.RejectProduct(product.ID, "late"); !errors.Is(err, ErrProductNotPending) {
		t.Fatalf("expected ErrProductNotPending on reject-after-approve, got %v", err)
	}
}

func TestRejectProductKeepsReason(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	vendor := createCatalogTestVendor(t, db, "reject@example.com")

	product, err := svc.CreateProduct(CreateProductInput{
		VendorID: vendor.ID,
		Title:    "Questionable Item",
		Price:    testMoney(t, "10.00"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	rejected, err := svc.RejectProduct(product.ID, "missing license proof")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.ProductStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectReason != "missing license proof" {
		t.Fatalf("expected reject reason, got %q", rejected.RejectReason)
	}

	if _, err := svc.ApproveProduct(product.ID); !errors.Is(err, ErrProductNotPending) {
		t.Fatalf("expected ErrProductNotPending after reject, got %v", err)
	}
}

func TestUpdateProductOwnershipCheck(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	owner := createCatalogTestVendor(t, db, "update-owner@example.com")
	intruder := createCatalogTestVendor(t, db, "update-intruder@example.com")

	product, err := svc.CreateProduct(CreateProductInput{
		VendorID: owner.ID,
		Title:    "Owned Item",
		Price:    testMoney(t, "10.00"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if _, err := svc.UpdateProduct(UpdateProductInput{
		ProductID: product.ID,
		VendorID:  intruder.ID,
		Title:     "Hijacked",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	newPrice := testMoney(t, "25.00")
	inactive := false
	updated, err := svc.UpdateProduct(UpdateProductInput{
		ProductID: product.ID,
		VendorID:  owner.ID,
		Title:     "Owned Item v2",
		Price:     &newPrice,
		IsActive:  &inactive,
	})
	if err != nil {
		t.Fatalf("update by owner failed: %v", err)
	}
	if updated.Title != "Owned Item v2" {
		t.Fatalf("expected updated title, got %s", updated.Title)
	}
	if !updated.PriceAmount.Equal(newPrice.Decimal) {
		t.Fatalf("expected price 25.00, got %s", updated.PriceAmount.String())
	}
	if updated.IsActive {
		t.Fatalf("expected product deactivated")
	}
}

func setupCatalogServiceTest(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.SequenceCounter{},
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewCatalogService(
		repository.NewProductRepository(db),
		repository.NewVendorRepository(db),
		repository.NewSequenceRepository(db),
		notifySvc,
	)
	return svc, db
}

func createCatalogTestVendor(t *testing.T, db *gorm.DB, email string) models.Vendor {
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
		UserID:         user.ID,
		StoreName:      "store-" + email,
		CommissionRate: testMoney(t, "15"),
	}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}
