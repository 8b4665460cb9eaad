// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"refundly/internal/config"
	"refundly/internal/gateway"
	"refundly/internal/handlers"
	"refundly/internal/middleware"
	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/auth"
	"refundly/internal/services/billing"
	"refundly/internal/services/chatbot"
	"refundly/internal/services/dashboard"
	"refundly/internal/services/notification"
	"refundly/internal/services/refund"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB, billingCfg *config.Billing) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db, repositories.CacheService)
	paymentRepo := repositories.NewPaymentRecordRepository(db)
	metricsRepo := repositories.NewMetricsRepository(db)
	billingRepo := repositories.NewBillingRepository(db, repositories.CacheService)
	refundRepo := repositories.NewRefundRepository(db)

	// External collaborators
	gatewayClient := gateway.NewRazorpayClient(billingCfg)
	notifier := notification.NewService()

	// Services
	authService := auth.NewService(userRepo, merchantRepo)
	billingService := billing.NewService(
		merchantRepo,
		paymentRepo,
		metricsRepo,
		billingRepo,
		gatewayClient,
		billingCfg,
		notifier,
	)
	refundService := refund.NewService(refundRepo, metricsRepo, notifier)
	dashboardService := dashboard.NewService(refundRepo, metricsRepo, merchantRepo, billingService)
	chatbotService := chatbot.NewService()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	billingHandler := handlers.NewBillingHandler(billingService, billingCfg)
	webhookHandler := handlers.NewWebhookHandler(billingService)
	refundHandler := handlers.NewRefundHandler(refundService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	chatbotHandler := handlers.NewChatbotHandler(chatbotService)
	merchantHandler := handlers.NewMerchantHandler(merchantRepo, authService)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/refresh", authHandler.RefreshToken)
	api.Get("/billing/plans", billingHandler.GetPlans)
	api.Post("/chatbot/message", chatbotHandler.Message)

	// The gateway authenticates itself with the body signature, not a JWT.
	api.Post("/billing/webhook", webhookHandler.HandleGatewayWebhook)

	app.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Refundly API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	setupBillingRoutes(protected, billingHandler)
	setupRefundRoutes(protected, refundHandler)
	setupAccountRoutes(protected, authHandler, merchantHandler, dashboardHandler)
}

func setupBillingRoutes(router fiber.Router, h *handlers.BillingHandler) {
	billingGroup := router.Group("/billing", middleware.HasPermission(models.PermissionBillingRead))

	billingGroup.Get("/overage", h.GetOverage)
	billingGroup.Post("/subscription", middleware.HasPermission(models.PermissionBillingWrite), h.CreateSubscription)
	billingGroup.Put("/subscription", middleware.HasPermission(models.PermissionBillingWrite), h.UpdateSubscription)
	billingGroup.Post("/subscription/cancel", middleware.HasPermission(models.PermissionBillingWrite), h.CancelSubscription)
}

func setupRefundRoutes(router fiber.Router, h *handlers.RefundHandler) {
	refunds := router.Group("/refunds", middleware.HasPermission(models.PermissionRefundRead))

	refunds.Get("/", h.ListRefunds)
	refunds.Get("/:id", h.GetRefund)
	refunds.Post("/", middleware.HasPermission(models.PermissionRefundWrite), h.CreateRefund)
	refunds.Put("/:id/status", middleware.HasPermission(models.PermissionRefundWrite), h.UpdateRefundStatus)
	refunds.Post("/bulk-import", middleware.HasPermission(models.PermissionRefundWrite), h.BulkImport)
	refunds.Post("/bulk-status", middleware.HasPermission(models.PermissionRefundWrite), h.BulkUpdateStatus)
}

func setupAccountRoutes(router fiber.Router, authHandler *handlers.AuthHandler, merchantHandler *handlers.MerchantHandler, dashboardHandler *handlers.DashboardHandler) {
	router.Get("/dashboard", middleware.HasPermission(models.PermissionDashboardRead), dashboardHandler.GetMerchantDashboard)

	router.Get("/merchant/profile", merchantHandler.GetMerchantProfile)
	router.Put("/merchant/profile", merchantHandler.UpdateMerchantProfile)

	router.Post("/change-password", authHandler.ChangePassword)
	router.Post("/logout", authHandler.LogoutUser)
}
