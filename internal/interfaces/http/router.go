package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subzonix/subzonix-api/internal/application/auth"
	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/internal/application/sales"
	"github.com/subzonix/subzonix-api/internal/application/usecase"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	SaleUC         *sales.SaleUseCase
	ReportUC       *sales.ReportPDFUseCase
	TenantUC       *usecase.TenantUseCase
	NotificationUC *usecase.NotificationUseCase
	Entitlements   *usecase.EntitlementService
	Manager        *retention.Manager
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Tenants: alta pública (onboarding), el resto protegido
	tenantHandler := NewTenantHandler(deps.TenantUC)
	api.Post("/tenants", tenantHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	tenants := protected.Group("/tenants")
	tenants.Get("/:id", tenantHandler.GetByID)
	tenants.Put("/:id", tenantHandler.Update)
	tenants.Get("/:id/modules", tenantHandler.ListModules)

	// Sales (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReportUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/report.pdf", RequireModule(entity.ModuleReports, deps.Entitlements), saleHandler.Report)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", saleHandler.Delete)

	// Notifications (protegido)
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)

	// Dashboard (protegido, requiere módulo dashboard)
	dashboard := protected.Group("/dashboard", RequireModule(entity.ModuleDashboard, deps.Entitlements))
	dashboardHandler := NewDashboardHandler(deps.Manager)
	dashboard.Get("/summary", dashboardHandler.Summary)
	dashboard.Post("/scope/:tenantID", dashboardHandler.SwitchScope)
}
