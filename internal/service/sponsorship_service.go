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

	"gorm.io/gorm"
)

// SponsorshipService 推广位服务
// 生效推广位的所有状态流转都是带前置状态校验的条件更新，
// 审批、手工下线和到期巡检互相竞争时不会丢失更新。
type SponsorshipService struct {
	cfg             *config.Config
	sponsorshipRepo repository.SponsorshipRepository
	vendorRepo      repository.VendorRepository
	productRepo     repository.ProductRepository
	sequenceRepo    repository.SequenceRepository
	notifySvc       *NotificationService
}

// RequestSponsorshipInput 申请推广位输入
type RequestSponsorshipInput struct {
	VendorID  uint
	Type      string
	Tier      string
	ProductID uint
	Message   string
}

// NewSponsorshipService 创建推广位服务
func NewSponsorshipService(
	cfg *config.Config,
	sponsorshipRepo repository.SponsorshipRepository,
	vendorRepo repository.VendorRepository,
	productRepo repository.ProductRepository,
	sequenceRepo repository.SequenceRepository,
	notifySvc *NotificationService,
) *SponsorshipService {
	return &SponsorshipService{
		cfg:             cfg,
		sponsorshipRepo: sponsorshipRepo,
		vendorRepo:      vendorRepo,
		productRepo:     productRepo,
		sequenceRepo:    sequenceRepo,
		notifySvc:       notifySvc,
	}
}

// Request 申请推广位
func (s *SponsorshipService) Request(input RequestSponsorshipInput) (*models.SponsorshipRequest, error) {
	if input.VendorID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Type != constants.SponsorshipTypeVendor && input.Type != constants.SponsorshipTypeProduct {
		return nil, ErrInvalidInput
	}
	if input.Tier != constants.SponsorshipTierStandard && input.Tier != constants.SponsorshipTierPremium {
		return nil, ErrInvalidInput
	}

	vendor, err := s.vendorRepo.GetByID(input.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}

	if input.Type == constants.SponsorshipTypeProduct {
		if input.ProductID == 0 {
			return nil, ErrInvalidInput
		}
		product, err := s.productRepo.GetByID(input.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		if product.VendorID != input.VendorID {
			return nil, ErrForbidden
		}
		if product.Status != constants.ProductStatusApproved {
			return nil, ErrProductNotApproved
		}
	} else {
		input.ProductID = 0
	}

	open, err := s.sponsorshipRepo.HasOpenRequest(input.VendorID, input.Type, input.ProductID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrSponsorAlreadyActive
	}

	fee, ok := s.cfg.Commerce.SponsorshipFees[config.SponsorshipFeeKey(input.Type, input.Tier)]
	if !ok {
		return nil, ErrSponsorshipFeeUnknown
	}
	feeAmount, err := models.NewMoneyFromString(fee)
	if err != nil {
		return nil, ErrSponsorshipFeeUnknown
	}

	// 序号分配失败时不创建实体
	seqID, err := s.sequenceRepo.Next(constants.SequenceSponsorshipRequest)
	if err != nil {
		return nil, err
	}

	request := &models.SponsorshipRequest{
		SeqID:    seqID,
		VendorID: input.VendorID,
		Type:     input.Type,
		Tier:     input.Tier,
		Fee:      feeAmount,
		Status:   constants.SponsorshipRequestStatusPending,
	}
	if input.Type == constants.SponsorshipTypeProduct {
		request.ProductID = input.ProductID
	}
	if err := s.sponsorshipRepo.CreateRequest(request); err != nil {
		return nil, err
	}
	logger.Infow("sponsorship_requested",
		"request_id", request.ID,
		"vendor_id", input.VendorID,
		"type", input.Type,
		"tier", input.Tier,
	)
	return request, nil
}

// Approve 审批通过推广位申请
// 创建生效记录、打推广标记、置申请为 approved，全部在一个事务内。
func (s *SponsorshipService) Approve(requestID uint) (*models.ActiveSponsor, error) {
	if requestID == 0 {
		return nil, ErrSponsorshipNotFound
	}
	duration := time.Duration(s.cfg.Commerce.SponsorshipDurationDays) * 24 * time.Hour

	var sponsor *models.ActiveSponsor
	var vendorUserID uint

	err := s.sponsorshipRepo.Transaction(func(tx *gorm.DB) error {
		sponsorshipRepo := s.sponsorshipRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		request, err := sponsorshipRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrSponsorshipNotFound
		}
		if request.Status != constants.SponsorshipRequestStatusPending {
			return ErrSponsorshipNotPending
		}

		// 先锁店铺行，同店铺的审批串行化，唯一性检查才可靠
		vendor, err := vendorRepo.GetByIDForUpdate(request.VendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return ErrVendorNotFound
		}
		vendorUserID = vendor.UserID

		// 同一目标同一时刻至多一个生效推广位
		active, _, err := sponsorshipRepo.ListActive(repository.ActiveSponsorListFilter{
			VendorID: request.VendorID,
			Type:     request.Type,
			Status:   constants.ActiveSponsorStatusActive,
		})
		if err != nil {
			return err
		}
		for _, existing := range active {
			if request.Type != constants.SponsorshipTypeProduct || existing.ProductID == request.ProductID {
				return ErrSponsorAlreadyActive
			}
		}

		now := time.Now()
		request.Status = constants.SponsorshipRequestStatusApproved
		request.ProcessedAt = &now
		if err := sponsorshipRepo.UpdateRequest(request); err != nil {
			return err
		}

		sponsor = &models.ActiveSponsor{
			RequestID: request.ID,
			VendorID:  request.VendorID,
			Type:      request.Type,
			Tier:      request.Tier,
			ProductID: request.ProductID,
			Status:    constants.ActiveSponsorStatusActive,
			StartDate: now,
			EndDate:   now.Add(duration),
		}
		if err := sponsorshipRepo.CreateActive(sponsor); err != nil {
			return err
		}

		if err := s.setSponsoredFlag(vendorRepo, productRepo, request.Type, request.VendorID, request.ProductID, true); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifySvc.Notify(CreateNotificationInput{
		UserID:  vendorUserID,
		Type:    constants.NotificationTypeSponsorshipApproved,
		Title:   "Sponsorship approved",
		Content: fmt.Sprintf("Your %s sponsorship is live until %s.", sponsor.Type, sponsor.EndDate.Format("2006-01-02")),
		Link:    "/vendor/sponsorships",
		Payload: models.JSON{"active_sponsor_id": sponsor.ID},
	})
	logger.Infow("sponsorship_approved",
		"request_id", requestID,
		"active_sponsor_id", sponsor.ID,
		"end_date", sponsor.EndDate,
	)
	return sponsor, nil
}

// Reject 驳回推广位申请
func (s *SponsorshipService) Reject(requestID uint, reason string) (*models.SponsorshipRequest, error) {
	if requestID == 0 {
		return nil, ErrSponsorshipNotFound
	}
	var vendorUserID uint

	err := s.sponsorshipRepo.Transaction(func(tx *gorm.DB) error {
		sponsorshipRepo := s.sponsorshipRepo.WithTx(tx)
		request, err := sponsorshipRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrSponsorshipNotFound
		}
		if request.Status != constants.SponsorshipRequestStatusPending {
			return ErrSponsorshipNotPending
		}
		now := time.Now()
		request.Status = constants.SponsorshipRequestStatusRejected
		request.ProcessedAt = &now
		request.RejectReason = strings.TrimSpace(reason)
		if err := sponsorshipRepo.UpdateRequest(request); err != nil {
			return err
		}

		vendor, err := s.vendorRepo.WithTx(tx).GetByID(request.VendorID)
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
			Type:    constants.NotificationTypeSponsorshipRejected,
			Title:   "Sponsorship rejected",
			Content: fmt.Sprintf("Your sponsorship request was rejected: %s", strings.TrimSpace(reason)),
			Link:    "/vendor/sponsorships",
			Payload: models.JSON{"request_id": requestID},
		})
	}
	logger.Infow("sponsorship_rejected", "request_id", requestID, "reason", reason)
	return s.sponsorshipRepo.GetRequestByID(requestID)
}

// RemoveManually 管理员手工下线生效推广位
func (s *SponsorshipService) RemoveManually(activeSponsorID uint) (*models.ActiveSponsor, error) {
	return s.deactivate(activeSponsorID, constants.ActiveSponsorStatusCancelled,
		constants.NotificationTypeSponsorshipRemoved, "Sponsorship removed",
		"Your sponsorship placement has been removed by the marketplace team.")
}

// ExpireDue 到期巡检：把过期的 active 推广位置为 expired 并清标记
// 条件更新保证幂等，与审批和手工下线竞争时安全。
func (s *SponsorshipService) ExpireDue(now time.Time) (int, error) {
	due, err := s.sponsorshipRepo.ListDue(now, 200)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, sponsor := range due {
		_, err := s.deactivate(sponsor.ID, constants.ActiveSponsorStatusExpired,
			constants.NotificationTypeSponsorshipExpired, "Sponsorship expired",
			fmt.Sprintf("Your %s sponsorship ended on %s.", sponsor.Type, sponsor.EndDate.Format("2006-01-02")))
		if err != nil {
			if err == ErrSponsorNotActive {
				// 已被并发流转处理，跳过
				continue
			}
			logger.Warnw("sponsorship_expire_failed", "active_sponsor_id", sponsor.ID, "error", err)
			continue
		}
		expired++
	}
	if expired > 0 {
		logger.Infow("sponsorship_expiry_sweep", "expired", expired)
	}
	return expired, nil
}

// GetRequest 按ID查询推广位申请
func (s *SponsorshipService) GetRequest(requestID uint) (*models.SponsorshipRequest, error) {
	request, err := s.sponsorshipRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrSponsorshipNotFound
	}
	return request, nil
}

// ListRequests 查询推广位申请列表
func (s *SponsorshipService) ListRequests(filter repository.SponsorshipRequestListFilter) ([]models.SponsorshipRequest, int64, error) {
	return s.sponsorshipRepo.ListRequests(filter)
}

// ListActive 查询生效推广位列表
func (s *SponsorshipService) ListActive(filter repository.ActiveSponsorListFilter) ([]models.ActiveSponsor, int64, error) {
	return s.sponsorshipRepo.ListActive(filter)
}

// deactivate active -> toStatus 的条件流转，并清理推广标记
func (s *SponsorshipService) deactivate(activeSponsorID uint, toStatus, notifyType, notifyTitle, notifyContent string) (*models.ActiveSponsor, error) {
	if activeSponsorID == 0 {
		return nil, ErrSponsorNotFound
	}
	var vendorUserID uint

	err := s.sponsorshipRepo.Transaction(func(tx *gorm.DB) error {
		sponsorshipRepo := s.sponsorshipRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		sponsor, err := sponsorshipRepo.GetActiveByID(activeSponsorID)
		if err != nil {
			return err
		}
		if sponsor == nil {
			return ErrSponsorNotFound
		}
		updated, err := sponsorshipRepo.UpdateActiveStatusIf(activeSponsorID, constants.ActiveSponsorStatusActive, toStatus)
		if err != nil {
			return err
		}
		if !updated {
			return ErrSponsorNotActive
		}

		if err := s.setSponsoredFlag(vendorRepo, productRepo, sponsor.Type, sponsor.VendorID, sponsor.ProductID, false); err != nil {
			return err
		}

		vendor, err := vendorRepo.GetByID(sponsor.VendorID)
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
			Type:    notifyType,
			Title:   notifyTitle,
			Content: notifyContent,
			Link:    "/vendor/sponsorships",
			Payload: models.JSON{"active_sponsor_id": activeSponsorID},
		})
	}
	return s.sponsorshipRepo.GetActiveByID(activeSponsorID)
}

// setSponsoredFlag 维护 Vendor/Product 上的推广标记（派生视图）
func (s *SponsorshipService) setSponsoredFlag(
	vendorRepo repository.VendorRepository,
	productRepo repository.ProductRepository,
	sponsorType string,
	vendorID, productID uint,
	sponsored bool,
) error {
	if sponsorType == constants.SponsorshipTypeProduct {
		return productRepo.SetSponsored(productID, sponsored)
	}
	return vendorRepo.SetSponsored(vendorID, sponsored)
}
