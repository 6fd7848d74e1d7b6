package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/billing-service/internal/api/http"
	"github.com/spec-kit/billing-service/internal/api/http/handlers"
	"github.com/spec-kit/billing-service/internal/auth"
	"github.com/spec-kit/billing-service/internal/config"
	"github.com/spec-kit/billing-service/internal/events"
	"github.com/spec-kit/billing-service/internal/observability"
	"github.com/spec-kit/billing-service/internal/persistence"
	"github.com/spec-kit/billing-service/internal/repository"
	"github.com/spec-kit/billing-service/internal/repository/memory"
	"github.com/spec-kit/billing-service/internal/service"
	"github.com/spec-kit/billing-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		userRepo     repository.UserRepository
		customerRepo repository.CustomerRepository
		invoiceRepo  repository.InvoiceRepository
		dependencies []handlers.Dependency
	)
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		customerRepo = repository.NewCustomerRepository(pool)
		invoiceRepo = repository.NewInvoiceRepository(pool)
		dependencies = append(dependencies, handlers.Dependency{Name: "postgres", Ping: pg.Ping})
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		userRepo = store.Users()
		customerRepo = store.Customers()
		invoiceRepo = store.Invoices()
	}

	var limiter auth.LoginLimiter = auth.NoopLoginLimiter{}
	if cfg.Auth.LoginMaxAttempts > 0 {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		limiter = redis.LoginLimiter(cfg.Auth)
		dependencies = append(dependencies, handlers.Dependency{Name: "redis", Ping: redis.Ping, Optional: true})
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Limiter:  limiter,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	customerService := service.NewCustomerService(customerRepo)
	invoiceService := service.NewInvoiceService(service.InvoiceDependencies{
		InvoiceRepo:  invoiceRepo,
		CustomerRepo: customerRepo,
		Dispatcher:   dispatcher,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, dependencies...),
		Users:          handlers.NewUsersHandler(authService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Invoices:       handlers.NewInvoicesHandler(invoiceService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
