package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/subzonix/subzonix-api/internal/application/auth"
	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/internal/application/sales"
	"github.com/subzonix/subzonix-api/internal/application/usecase"
	infrapdf "github.com/subzonix/subzonix-api/internal/infrastructure/pdf"
	"github.com/subzonix/subzonix-api/internal/infrastructure/postgres"
	"github.com/subzonix/subzonix-api/internal/infrastructure/rediskv"
	httpRouter "github.com/subzonix/subzonix-api/internal/interfaces/http"
	"github.com/subzonix/subzonix-api/pkg/config"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rdb, err := rediskv.NewClient(ctx, cfg.Redis)
	if err != nil {
		// El cooldown debe sobrevivir reinicios; sin Redis no se arranca.
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	saleUC := sales.NewSaleUseCase(saleRepo)
	tenantUC := usecase.NewTenantUseCase(tenantRepo)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	entitlementSvc := usecase.NewEntitlementService(tenantRepo)

	pdfGenerator := infrapdf.NewMarotoSalesReport()
	reportUC := sales.NewReportPDFUseCase(saleRepo, tenantRepo, pdfGenerator)

	// Motor de retención: feed de ventas + watcher de entitlement sobre
	// LISTEN/NOTIFY, cooldown en Redis y lock distribuido del ciclo.
	saleFeed := postgres.NewSaleFeed(pool, log)
	entitlementWatcher := postgres.NewEntitlementWatcher(pool, entitlementSvc, log)
	gate := retention.NewCooldownGate(
		rediskv.NewCooldownStore(rdb),
		time.Duration(cfg.Retention.CooldownHours)*time.Hour,
	)
	engine := retention.NewEngine(
		saleFeed, entitlementWatcher, notificationRepo, gate,
		rediskv.NewCycleLocker(rdb), log,
		retention.WithWarningTTL(time.Duration(cfg.Retention.WarningTTLHours)*time.Hour),
	)
	manager := retention.NewManager(engine, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Subzonix API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		SaleUC:         saleUC,
		ReportUC:       reportUC,
		TenantUC:       tenantUC,
		NotificationUC: notificationUC,
		Entitlements:   entitlementSvc,
		Manager:        manager,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Cierra las sesiones del motor antes de soltar pool y Redis.
	manager.Close()

	log.Info().Msg("aplicación detenida")
}
