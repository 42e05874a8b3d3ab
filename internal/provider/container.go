package provider

import (
	"github.com/marketbay/internal/authz"
	"github.com/marketbay/internal/cache"
	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/queue"
	"github.com/marketbay/internal/repository"
	"github.com/marketbay/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	SequenceRepo     repository.SequenceRepository
	UserRepo         repository.UserRepository
	VendorRepo       repository.VendorRepository
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	TransactionRepo  repository.TransactionRepository
	WithdrawalRepo   repository.WithdrawalRepository
	SponsorshipRepo  repository.SponsorshipRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CatalogService      *service.CatalogService
	OrderService        *service.OrderService
	LedgerService       *service.LedgerService
	WithdrawalService   *service.WithdrawalService
	SponsorshipService  *service.SponsorshipService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.SequenceRepo = repository.NewSequenceRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.VendorRepo = repository.NewVendorRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.SponsorshipRepo = repository.NewSponsorshipRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
	} else {
		if err := authzService.BootstrapBuiltinRoles(); err != nil {
			logger.Errorw("provider_bootstrap_authz_roles_failed", "error", err)
		}
		c.AuthzService = authzService
	}

	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.VendorRepo)
	c.CatalogService = service.NewCatalogService(c.ProductRepo, c.VendorRepo, c.SequenceRepo, c.NotificationService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.VendorRepo, c.TransactionRepo, c.SequenceRepo, c.NotificationService)
	c.LedgerService = service.NewLedgerService(c.VendorRepo, c.TransactionRepo, c.OrderRepo, c.ProductRepo, c.WithdrawalRepo)
	c.WithdrawalService = service.NewWithdrawalService(c.Config, c.WithdrawalRepo, c.VendorRepo, c.TransactionRepo, c.SequenceRepo, c.NotificationService)
	c.SponsorshipService = service.NewSponsorshipService(c.Config, c.SponsorshipRepo, c.VendorRepo, c.ProductRepo, c.SequenceRepo, c.NotificationService)
}
