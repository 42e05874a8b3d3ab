package worker

import (
	"context"
	"errors"
	"time"

	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultSweepInterval     = time.Minute
	defaultReconcileInterval = time.Hour
)

// Service 异步队列服务，附带推广位到期与账务对账的周期任务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer

	sweepInterval     time.Duration
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	sweepInterval := defaultSweepInterval
	if cfg.Commerce.SweepIntervalSeconds > 0 {
		sweepInterval = time.Duration(cfg.Commerce.SweepIntervalSeconds) * time.Second
	}
	reconcileInterval := defaultReconcileInterval
	if cfg.Commerce.ReconcileIntervalSeconds > 0 {
		reconcileInterval = time.Duration(cfg.Commerce.ReconcileIntervalSeconds) * time.Second
	}

	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		sweepInterval:     sweepInterval,
		reconcileInterval: reconcileInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.SponsorshipService != nil {
		go s.runSponsorshipExpiryLoop(ctx)
	}
	if s.consumer != nil && s.consumer.LedgerService != nil {
		go s.runLedgerReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runSponsorshipExpiryLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.SponsorshipService == nil {
		return
	}
	runOnce := func() {
		expired, err := s.consumer.SponsorshipService.ExpireDue(time.Now())
		if err != nil {
			logger.Warnw("worker_sponsorship_expire_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_sponsorship_expired", "count", expired)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runLedgerReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.LedgerService == nil {
		return
	}
	runOnce := func() {
		corrected, err := s.consumer.LedgerService.ReconcileAll()
		if err != nil {
			logger.Warnw("worker_ledger_reconcile_failed", "error", err)
			return
		}
		if corrected > 0 {
			logger.Warnw("worker_ledger_reconcile_corrected", "count", corrected)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
