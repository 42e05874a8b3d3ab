package router

import (
	"fmt"
	"strings"

	"github.com/marketbay/internal/cache"
	"github.com/marketbay/internal/config"
	adminhandlers "github.com/marketbay/internal/http/handlers/admin"
	publichandlers "github.com/marketbay/internal/http/handlers/public"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mb"
	}
	redisClient := cache.Client()
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", publicHandler.Login)
		}

		// 公开商品目录
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:id", publicHandler.GetProduct)

		// 支付网关回调（网关侧无用户令牌）
		apiV1.POST("/payments/callback", publicHandler.PaymentCallback)

		// 授权密钥核验（持有密钥即可查询）
		apiV1.POST("/licenses/verify", publicHandler.VerifyLicense)

		// 需鉴权接口
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			// 订单
			authorized.POST("/orders", RateLimitMiddleware(redisClient, orderRule, KeyByUserID), publicHandler.PlaceOrder)
			authorized.GET("/orders", publicHandler.ListMyOrders)
			authorized.GET("/orders/:id", publicHandler.GetOrder)

			// 站内通知
			authorized.GET("/notifications", publicHandler.ListNotifications)
			authorized.GET("/notifications/unread-count", publicHandler.UnreadNotificationCount)
			authorized.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
			authorized.POST("/notifications/read-all", publicHandler.MarkAllNotificationsRead)

			// 店铺经营面
			vendor := authorized.Group("/vendor")
			{
				vendor.POST("/products", publicHandler.CreateVendorProduct)
				vendor.PUT("/products/:id", publicHandler.UpdateVendorProduct)
				vendor.GET("/products", publicHandler.ListVendorProducts)
				vendor.GET("/balance", publicHandler.GetVendorBalance)
				vendor.GET("/transactions", publicHandler.ListVendorTransactions)
				vendor.POST("/withdrawals", publicHandler.RequestWithdrawal)
				vendor.GET("/withdrawals", publicHandler.ListVendorWithdrawals)
				vendor.POST("/sponsorships", publicHandler.RequestSponsorship)
				vendor.GET("/sponsorships", publicHandler.ListVendorSponsorships)
			}

			// 管理端
			admin := authorized.Group("/admin")
			{
				// 商品审核
				admin.GET("/products", adminHandler.ListProducts)
				admin.POST("/products/:id/approve", adminHandler.ApproveProduct)
				admin.POST("/products/:id/reject", adminHandler.RejectProduct)

				// 提现审批
				admin.GET("/withdrawals", adminHandler.ListWithdrawals)
				admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
				admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)

				// 推广位管理
				admin.GET("/sponsorship-requests", adminHandler.ListSponsorshipRequests)
				admin.POST("/sponsorship-requests/:id/approve", adminHandler.ApproveSponsorship)
				admin.POST("/sponsorship-requests/:id/reject", adminHandler.RejectSponsorship)
				admin.GET("/active-sponsors", adminHandler.ListActiveSponsors)
				admin.DELETE("/active-sponsors/:id", adminHandler.RemoveActiveSponsor)
				admin.POST("/sponsorships/run-expiry", adminHandler.RunSponsorshipExpiry)

				// 账务与平台视图
				admin.GET("/transactions", adminHandler.ListTransactions)
				admin.GET("/vendors", adminHandler.ListVendors)
				admin.GET("/vendors/:id/balance", adminHandler.GetVendorBalance)
				admin.POST("/ledger/reconcile", adminHandler.ReconcileLedger)
				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/orders", adminHandler.ListOrders)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
