package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单与交付服务
// 支付完成回调是唯一可重放的外部事件，入账以 (order, vendor) 引用键去重，
// 重放只补齐缺失的部分，绝不二次入账。
type OrderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	vendorRepo   repository.VendorRepository
	txnRepo      repository.TransactionRepository
	sequenceRepo repository.SequenceRepository
	notifySvc    *NotificationService
}

// OrderItemInput 下单商品输入
type OrderItemInput struct {
	ProductID uint
	Price     models.Money
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	CustomerID    uint
	Items         []OrderItemInput
	PaymentMethod string
	ClientIP      string
}

// PaymentCallbackInput 支付回调输入
// OrderID 为空时用商户订单号 OrderNo 定位订单。
type PaymentCallbackInput struct {
	OrderID     uint
	OrderNo     string
	ProviderRef string
	Status      string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	vendorRepo repository.VendorRepository,
	txnRepo repository.TransactionRepository,
	sequenceRepo repository.SequenceRepository,
	notifySvc *NotificationService,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		vendorRepo:   vendorRepo,
		txnRepo:      txnRepo,
		sequenceRepo: sequenceRepo,
		notifySvc:    notifySvc,
	}
}

// PlaceOrder 创建订单
// 金额以服务端目录价为准，客户端提交价必须逐项一致。
func (s *OrderService) PlaceOrder(input PlaceOrderInput) (*models.Order, error) {
	if input.CustomerID == 0 {
		return nil, ErrInvalidInput
	}
	if len(input.Items) == 0 {
		return nil, ErrOrderEmptyItems
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = constants.PaymentMethodGateway
	}

	productIDs := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == 0 {
			return nil, ErrInvalidInput
		}
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if product.Status != constants.ProductStatusApproved || !product.IsActive {
			return nil, ErrProductNotApproved
		}
		if !item.Price.Decimal.Round(2).Equal(product.PriceAmount.Decimal.Round(2)) {
			return nil, ErrProductPriceMismatch
		}
		total = total.Add(product.PriceAmount.Decimal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			VendorID:  product.VendorID,
			Title:     product.Title,
			Price:     product.PriceAmount,
		})
	}

	// 序号分配失败时不创建实体
	seqID, err := s.sequenceRepo.Next(constants.SequenceOrder)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		SeqID:         seqID,
		OrderNo:       buildOrderNo(seqID),
		CustomerID:    input.CustomerID,
		TotalAmount:   models.NewMoneyFromDecimal(total),
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: method,
		ClientIP:      strings.TrimSpace(input.ClientIP),
		Items:         orderItems,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	logger.Infow("order_placed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"customer_id", input.CustomerID,
		"total_amount", order.TotalAmount.String(),
		"items", len(orderItems),
	)
	return order, nil
}

// HandlePaymentCallback 处理外部支付回调
func (s *OrderService) HandlePaymentCallback(input PaymentCallbackInput) (*models.Order, error) {
	orderID := input.OrderID
	if orderID == 0 {
		order, err := s.orderRepo.GetByOrderNo(input.OrderNo)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		orderID = order.ID
	}
	switch input.Status {
	case constants.PaymentStatusCompleted:
		return s.CompletePayment(orderID, input.ProviderRef)
	case constants.PaymentStatusFailed:
		return s.FailPayment(orderID)
	default:
		return nil, ErrInvalidInput
	}
}

// vendorCredit 单次回调中某店铺的入账结果
type vendorCredit struct {
	vendorID  uint
	userID    uint
	netAmount models.Money
	orderNo   string
}

// CompletePayment 支付完成：置状态、签发密钥、按店铺入账
// 整个流程在一个事务内完成，回调重放按引用键跳过已入账店铺。
func (s *OrderService) CompletePayment(orderID uint, providerRef string) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}

	var credits []vendorCredit
	var customerID uint
	var orderNo string
	var newlyCompleted bool

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)
		sequenceRepo := s.sequenceRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		switch order.PaymentStatus {
		case constants.PaymentStatusPending, constants.PaymentStatusCompleted:
		default:
			return ErrOrderStatusInvalid
		}
		customerID = order.CustomerID
		orderNo = order.OrderNo
		newlyCompleted = order.PaymentStatus == constants.PaymentStatusPending

		if newlyCompleted {
			now := time.Now()
			order.PaymentStatus = constants.PaymentStatusCompleted
			order.PaidAt = &now
			if providerRef != "" {
				order.ProviderRef = providerRef
			}
			if err := orderRepo.Update(order); err != nil {
				return err
			}
		}

		items, err := orderRepo.GetItemsByOrderID(order.ID)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].LicenseKey != nil && *items[i].LicenseKey != "" {
				continue
			}
			key, err := generateLicenseKey()
			if err != nil {
				return err
			}
			items[i].LicenseKey = &key
			if err := orderRepo.UpdateItem(&items[i]); err != nil {
				return err
			}
		}

		// 同一订单内按店铺聚合，一个店铺一条销售流水
		grouped := make(map[uint][]models.OrderItem)
		for _, item := range items {
			grouped[item.VendorID] = append(grouped[item.VendorID], item)
		}
		vendorIDs := make([]uint, 0, len(grouped))
		for vendorID := range grouped {
			vendorIDs = append(vendorIDs, vendorID)
		}
		sort.Slice(vendorIDs, func(i, j int) bool { return vendorIDs[i] < vendorIDs[j] })

		for _, vendorID := range vendorIDs {
			reference := buildSaleReference(order.ID, vendorID)
			existing, err := txnRepo.GetByReference(reference)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			vendor, err := vendorRepo.GetByIDForUpdate(vendorID)
			if err != nil {
				return err
			}
			if vendor == nil {
				return ErrVendorNotFound
			}

			amount := decimal.Zero
			for _, item := range grouped[vendorID] {
				amount = amount.Add(item.Price.Decimal)
			}
			amount = amount.Round(2)
			commission := amount.Mul(vendor.CommissionRate.Decimal).Div(decimal.NewFromInt(100)).Round(2)
			net := amount.Sub(commission).Round(2)

			txnSeq, err := sequenceRepo.Next(constants.SequenceTransaction)
			if err != nil {
				return err
			}
			txn := &models.Transaction{
				SeqID:            txnSeq,
				VendorID:         vendorID,
				OrderID:          order.ID,
				Type:             constants.TransactionTypeSale,
				Status:           constants.TransactionStatusCompleted,
				Amount:           models.NewMoneyFromDecimal(amount),
				CommissionAmount: models.NewMoneyFromDecimal(commission),
				NetAmount:        models.NewMoneyFromDecimal(net),
				Reference:        reference,
				Description:      fmt.Sprintf("Sale for order %s", order.OrderNo),
			}
			if err := txnRepo.Create(txn); err != nil {
				return err
			}

			vendor.TotalEarnings = models.NewMoneyFromDecimal(vendor.TotalEarnings.Decimal.Add(net))
			if err := vendorRepo.Update(vendor); err != nil {
				return err
			}
			for _, item := range grouped[vendorID] {
				if err := productRepo.IncrementTotalSales(item.ProductID, 1); err != nil {
					return err
				}
			}
			credits = append(credits, vendorCredit{
				vendorID:  vendorID,
				userID:    vendor.UserID,
				netAmount: models.NewMoneyFromDecimal(net),
				orderNo:   order.OrderNo,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 通知在事务提交后发送，失败不影响账务
	for _, credit := range credits {
		s.notifySvc.Notify(CreateNotificationInput{
			UserID:  credit.userID,
			Type:    constants.NotificationTypeSale,
			Title:   "New sale",
			Content: fmt.Sprintf("Order %s credited %s to your balance.", credit.orderNo, credit.netAmount.String()),
			Link:    "/vendor/transactions",
			Payload: models.JSON{"order_no": credit.orderNo, "vendor_id": credit.vendorID},
		})
	}
	if newlyCompleted {
		s.notifySvc.Notify(CreateNotificationInput{
			UserID:  customerID,
			Type:    constants.NotificationTypeOrderCompleted,
			Title:   "Order completed",
			Content: fmt.Sprintf("Your order %s is paid and license keys are issued.", orderNo),
			Link:    fmt.Sprintf("/orders/%d", orderID),
			Payload: models.JSON{"order_no": orderNo},
		})
	}

	logger.Infow("payment_completed",
		"order_id", orderID,
		"order_no", orderNo,
		"vendors_credited", len(credits),
		"replay", !newlyCompleted,
	)
	return s.orderRepo.GetByID(orderID)
}

// FailPayment 支付失败：pending -> failed，不触碰账本
func (s *OrderService) FailPayment(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	var customerID uint
	var orderNo string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.PaymentStatus == constants.PaymentStatusFailed {
			// 失败回调重放为空操作
			return nil
		}
		if order.PaymentStatus != constants.PaymentStatusPending {
			return ErrOrderStatusInvalid
		}
		order.PaymentStatus = constants.PaymentStatusFailed
		customerID = order.CustomerID
		orderNo = order.OrderNo
		return orderRepo.Update(order)
	})
	if err != nil {
		return nil, err
	}
	if customerID != 0 {
		s.notifySvc.Notify(CreateNotificationInput{
			UserID:  customerID,
			Type:    constants.NotificationTypeOrderFailed,
			Title:   "Payment failed",
			Content: fmt.Sprintf("Payment for order %s failed. No charge was applied.", orderNo),
			Link:    fmt.Sprintf("/orders/%d", orderID),
			Payload: models.JSON{"order_no": orderNo},
		})
		logger.Infow("payment_failed", "order_id", orderID, "order_no", orderNo)
	}
	return s.orderRepo.GetByID(orderID)
}

// GetOrder 按ID查询订单
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 查询订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// LicenseVerification 授权密钥核验结果
type LicenseVerification struct {
	Valid     bool       `json:"valid"`
	ProductID uint       `json:"product_id"`
	Title     string     `json:"title"`
	OrderNo   string     `json:"order_no"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}

// VerifyLicense 核验授权密钥
// 持有密钥即可查询，仅已完成支付的订单视为有效授权。
func (s *OrderService) VerifyLicense(licenseKey string) (*LicenseVerification, error) {
	key := strings.TrimSpace(licenseKey)
	if key == "" {
		return nil, ErrInvalidInput
	}
	item, err := s.orderRepo.GetItemByLicenseKey(key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrLicenseNotFound
	}
	order, err := s.orderRepo.GetByID(item.OrderID)
	if err != nil {
		return nil, err
	}
	result := &LicenseVerification{
		ProductID: item.ProductID,
		Title:     item.Title,
	}
	if order != nil {
		result.Valid = order.PaymentStatus == constants.PaymentStatusCompleted
		result.OrderNo = order.OrderNo
		result.IssuedAt = order.PaidAt
	}
	return result, nil
}

// buildSaleReference 构建销售流水幂等引用键
func buildSaleReference(orderID, vendorID uint) string {
	return fmt.Sprintf("order:%d:vendor:%d", orderID, vendorID)
}

// buildOrderNo 由业务序号构建用户可见订单号
func buildOrderNo(seqID int64) string {
	return fmt.Sprintf("MB%s%06d", time.Now().Format("20060102"), seqID)
}

// generateLicenseKey 生成授权密钥
// 128 位随机量，碰撞概率可忽略；唯一索引兜底。
func generateLicenseKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	raw := strings.ToUpper(hex.EncodeToString(buf))
	parts := make([]string, 0, 4)
	for i := 0; i < len(raw); i += 8 {
		parts = append(parts, raw[i:i+8])
	}
	return strings.Join(parts, "-"), nil
}
