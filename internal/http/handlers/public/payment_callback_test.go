package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/provider"
	"github.com/marketbay/internal/repository"
	"github.com/marketbay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestPaymentCallbackRejectsMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h := &Handler{}
	h.PaymentCallback(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected envelope status 200, got %d", w.Code)
	}
	var body struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body.StatusCode != 400 {
		t.Fatalf("expected status_code 400, got %d", body.StatusCode)
	}
}

func TestPaymentCallbackCompletesOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := setupCallbackTestHandler(t)
	order := createCallbackTestOrder(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := fmt.Sprintf(`{"order_id":%d,"transaction_id":"gw-1","status":"completed"}`, order.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.PaymentCallback(c)

	var body struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			OrderNo       string `json:"order_no"`
			PaymentStatus string `json:"payment_status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body.StatusCode != 0 {
		t.Fatalf("expected status_code 0, got %d (%s)", body.StatusCode, w.Body.String())
	}
	if body.Data.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", body.Data.PaymentStatus)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if reloaded.ProviderRef != "gw-1" {
		t.Fatalf("expected provider ref gw-1, got %s", reloaded.ProviderRef)
	}
}

func TestPaymentCallbackResolvesByOrderNo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := setupCallbackTestHandler(t)
	order := createCallbackTestOrder(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := fmt.Sprintf(`{"order_no":%q,"transaction_id":"gw-2","status":"completed"}`, order.OrderNo)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.PaymentCallback(c)

	var body struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			OrderNo       string `json:"order_no"`
			PaymentStatus string `json:"payment_status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body.StatusCode != 0 {
		t.Fatalf("expected status_code 0, got %d (%s)", body.StatusCode, w.Body.String())
	}
	if body.Data.OrderNo != order.OrderNo || body.Data.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected order %s completed, got %+v", order.OrderNo, body.Data)
	}
}

func TestPaymentCallbackRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db := setupCallbackTestHandler(t)
	order := createCallbackTestOrder(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := fmt.Sprintf(`{"order_id":%d,"status":"refund-me"}`, order.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.PaymentCallback(c)

	var body struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body.StatusCode != 400 {
		t.Fatalf("expected status_code 400, got %d", body.StatusCode)
	}
}

func setupCallbackTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_callback_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	notifySvc := service.NewNotificationService(repository.NewNotificationRepository(db), nil)
	orderSvc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewVendorRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewSequenceRepository(db),
		notifySvc,
	)
	return New(&provider.Container{OrderService: orderSvc}), db
}

func createCallbackTestOrder(t *testing.T, db *gorm.DB) models.Order {
	t.Helper()

	user := models.User{Email: "cb-vendor@example.com", PasswordHash: "hash", Role: constants.RoleVendor, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	vendor := models.Vendor{UserID: user.ID, StoreName: "cb-store", CommissionRate: models.NewMoneyFromDecimal(decimal.RequireFromString("15"))}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	product := models.Product{
		SeqID:       time.Now().UnixNano(),
		VendorID:    vendor.ID,
		Slug:        "cb-product",
		Title:       "Callback Product",
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		Status:      constants.ProductStatusApproved,
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	customer := models.User{Email: "cb-customer@example.com", PasswordHash: "hash", Role: constants.RoleCustomer, Status: constants.UserStatusActive}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	order := models.Order{
		SeqID:         time.Now().UnixNano(),
		OrderNo:       fmt.Sprintf("MB%d", time.Now().UnixNano()),
		CustomerID:    customer.ID,
		TotalAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: constants.PaymentMethodGateway,
		Items: []models.OrderItem{
			{
				ProductID: product.ID,
				VendorID:  vendor.ID,
				Title:     product.Title,
				Price:     product.PriceAmount,
			},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
