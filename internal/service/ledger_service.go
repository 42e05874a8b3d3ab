package service

import (
	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"gorm.io/gorm"
)

// LedgerService 收益账本服务
// 店铺收益字段只有两个写入方：支付完成入账和提现审批扣减。
// 本服务提供派生读数和以流水为准的对账回填。
type LedgerService struct {
	vendorRepo     repository.VendorRepository
	txnRepo        repository.TransactionRepository
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	withdrawalRepo repository.WithdrawalRepository
}

// VendorBalance 店铺余额读数
type VendorBalance struct {
	VendorID           uint         `json:"vendor_id"`
	TotalEarnings      models.Money `json:"total_earnings"`
	WithdrawnAmount    models.Money `json:"withdrawn_amount"`
	AvailableBalance   models.Money `json:"available_balance"`
	PendingWithdrawals int64        `json:"pending_withdrawals"`
}

// NewLedgerService 创建账本服务
func NewLedgerService(
	vendorRepo repository.VendorRepository,
	txnRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	withdrawalRepo repository.WithdrawalRepository,
) *LedgerService {
	return &LedgerService{
		vendorRepo:     vendorRepo,
		txnRepo:        txnRepo,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// AvailableBalance 查询店铺可用余额
// 余额读数附带待处理提现笔数，提现面板一次请求可渲染。
func (s *LedgerService) AvailableBalance(vendorID uint) (*VendorBalance, error) {
	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	pending, err := s.withdrawalRepo.CountPendingByVendor(vendor.ID)
	if err != nil {
		return nil, err
	}
	return &VendorBalance{
		VendorID:           vendor.ID,
		TotalEarnings:      vendor.TotalEarnings,
		WithdrawnAmount:    vendor.WithdrawnAmount,
		AvailableBalance:   vendor.AvailableBalance(),
		PendingWithdrawals: pending,
	}, nil
}

// ListTransactions 查询账本流水
func (s *LedgerService) ListTransactions(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.txnRepo.List(filter)
}

// ReconcileVendor 以流水为准回填店铺累计字段
// 汇总与快照不一致说明有旁路写入或历史缺账，以流水重算结果覆盖并告警。
func (s *LedgerService) ReconcileVendor(vendorID uint) (bool, error) {
	var fixed bool
	txErr := s.vendorRepo.Transaction(func(tx *gorm.DB) error {
		vendorRepo := s.vendorRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)

		vendor, err := vendorRepo.GetByIDForUpdate(vendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}

		earned, err := txnRepo.SumNetByVendor(vendorID, constants.TransactionTypeSale)
		if err != nil {
			return err
		}
		withdrawn, err := txnRepo.SumNetByVendor(vendorID, constants.TransactionTypeWithdrawal)
		if err != nil {
			return err
		}

		if !vendor.TotalEarnings.Decimal.Equal(earned.Decimal) ||
			!vendor.WithdrawnAmount.Decimal.Equal(withdrawn.Decimal) {
			logger.Warnw("ledger_reconcile_drift",
				"vendor_id", vendorID,
				"total_earnings", vendor.TotalEarnings.String(),
				"recomputed_earnings", earned.String(),
				"withdrawn_amount", vendor.WithdrawnAmount.String(),
				"recomputed_withdrawn", withdrawn.String(),
			)
			vendor.TotalEarnings = earned
			vendor.WithdrawnAmount = withdrawn
			fixed = true
			if err := vendorRepo.Update(vendor); err != nil {
				return err
			}
		}

		// 商品累计销量同样以订单历史为准回填
		counts, err := s.orderRepo.WithTx(tx).CompletedSalesCountByVendor(vendorID)
		if err != nil {
			return err
		}
		productRepo := s.productRepo.WithTx(tx)
		products, _, err := productRepo.List(repository.ProductListFilter{VendorID: vendorID})
		if err != nil {
			return err
		}
		for _, product := range products {
			want := counts[product.ID]
			if product.TotalSales == want {
				continue
			}
			logger.Warnw("ledger_reconcile_sales_drift",
				"vendor_id", vendorID,
				"product_id", product.ID,
				"total_sales", product.TotalSales,
				"recomputed_sales", want,
			)
			if err := productRepo.SetTotalSales(product.ID, want); err != nil {
				return err
			}
			fixed = true
		}
		return nil
	})
	if txErr != nil {
		return false, txErr
	}
	return fixed, nil
}

// ReconcileAll 对全部店铺执行对账，返回修正数量
func (s *LedgerService) ReconcileAll() (int, error) {
	page := 1
	const pageSize = 200
	fixedCount := 0
	for {
		vendors, _, err := s.vendorRepo.List(repository.VendorListFilter{Page: page, PageSize: pageSize})
		if err != nil {
			return fixedCount, err
		}
		if len(vendors) == 0 {
			return fixedCount, nil
		}
		for _, vendor := range vendors {
			fixed, err := s.ReconcileVendor(vendor.ID)
			if err != nil {
				logger.Warnw("ledger_reconcile_vendor_failed", "vendor_id", vendor.ID, "error", err)
				continue
			}
			if fixed {
				fixedCount++
			}
		}
		if len(vendors) < pageSize {
			return fixedCount, nil
		}
		page++
	}
}
