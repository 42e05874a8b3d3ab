package main

import (
	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 开发环境演示数据：一个管理员、一个卖家（带店铺与商品）、一个顾客。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	commissionRate, err := models.NewMoneyFromString(cfg.Commerce.DefaultCommissionRate)
	if err != nil {
		stdLog.Fatalf("Invalid default commission rate %q: %v", cfg.Commerce.DefaultCommissionRate, err)
	}

	vendorUser := ensureUser(stdLog.Fatalf, "vendor@marketbay.local", "vendor123", "Demo Vendor", constants.RoleVendor)
	ensureUser(stdLog.Fatalf, "customer@marketbay.local", "customer123", "Demo Customer", constants.RoleCustomer)

	vendor := ensureVendor(stdLog.Fatalf, vendorUser.ID, "Demo Store", commissionRate)

	products := []models.Product{
		{
			VendorID:    vendor.ID,
			Slug:        "demo-license-basic",
			Title:       "Demo License (Basic)",
			Description: "Single-seat software license for demos.",
			PriceAmount: mustMoney(stdLog.Fatalf, "10.00"),
			Tags:        models.StringArray{"license", "demo"},
			Status:      constants.ProductStatusApproved,
			IsActive:    true,
		},
		{
			VendorID:    vendor.ID,
			Slug:        "demo-license-pro",
			Title:       "Demo License (Pro)",
			Description: "Multi-seat software license for demos.",
			PriceAmount: mustMoney(stdLog.Fatalf, "20.00"),
			Tags:        models.StringArray{"license", "demo"},
			Status:      constants.ProductStatusApproved,
			IsActive:    true,
		},
		{
			VendorID:    vendor.ID,
			Slug:        "demo-ebook-draft",
			Title:       "Demo Ebook (Draft)",
			Description: "Awaiting marketplace review.",
			PriceAmount: mustMoney(stdLog.Fatalf, "5.00"),
			Tags:        models.StringArray{"ebook"},
			Status:      constants.ProductStatusPending,
			IsActive:    true,
		},
	}
	for i := range products {
		ensureProduct(stdLog.Printf, &products[i])
	}

	stdLog.Printf("Seed finished")
	stdLog.Printf("  admin:    admin@marketbay.local / admin123")
	stdLog.Printf("  vendor:   vendor@marketbay.local / vendor123")
	stdLog.Printf("  customer: customer@marketbay.local / customer123")
}

func ensureUser(fatalf func(string, ...interface{}), email, password, displayName, role string) *models.User {
	var existing models.User
	if err := models.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fatalf("Failed to hash password for %s: %v", email, err)
	}
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		fatalf("Failed to create user %s: %v", email, err)
	}
	return &user
}

func ensureVendor(fatalf func(string, ...interface{}), userID uint, storeName string, commissionRate models.Money) *models.Vendor {
	var existing models.Vendor
	if err := models.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return &existing
	}

	vendor := models.Vendor{
		UserID:         userID,
		StoreName:      storeName,
		CommissionRate: commissionRate,
	}
	if err := models.DB.Create(&vendor).Error; err != nil {
		fatalf("Failed to create vendor for user %d: %v", userID, err)
	}
	return &vendor
}

func ensureProduct(printf func(string, ...interface{}), product *models.Product) {
	var existing models.Product
	if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
		printf("Product already exists: %s", product.Slug)
		return
	}

	seq, err := nextSeq(constants.SequenceProduct)
	if err != nil {
		printf("Failed to allocate product seq for %s: %v", product.Slug, err)
		return
	}
	product.SeqID = seq
	if err := models.DB.Create(product).Error; err != nil {
		printf("Failed to create product %s: %v", product.Slug, err)
		return
	}
	printf("Created product: %s", product.Slug)
}

func nextSeq(name string) (int64, error) {
	var counter models.SequenceCounter
	if err := models.DB.Where("name = ?", name).First(&counter).Error; err == nil {
		counter.Value++
		if err := models.DB.Model(&models.SequenceCounter{}).Where("name = ?", name).Update("value", counter.Value).Error; err != nil {
			return 0, err
		}
		return counter.Value, nil
	}
	counter = models.SequenceCounter{Name: name, Value: 1}
	if err := models.DB.Create(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func mustMoney(fatalf func(string, ...interface{}), raw string) models.Money {
	money, err := models.NewMoneyFromString(raw)
	if err != nil {
		fatalf("Invalid amount %q: %v", raw, err)
	}
	return money
}
