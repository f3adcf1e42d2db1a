package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/controller"
	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/atm-inventory/internal/repository"
	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *Config
	Router *chi.Mux
	db     *repository.Database
	Logger *zap.Logger
	Server *http.Server
}

// Services are the dashboard commands the HTTP layer dispatches to.
type Services struct {
	Auth      core.AuthService
	Inventory core.InventoryService
	Reports   core.ReportService
}

func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		Logger: logger,
	}

	if err := app.initDB(ctx); err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(app.db)
	productRepo := repository.NewProductRepository(app.db)
	saleRepo := repository.NewSaleRepository(app.db)

	inventory := service.NewInventoryService(productRepo, saleRepo, service.InventoryOptions{
		AllowNegativeStock: cfg.AllowNegativeStock,
		LowStockThreshold:  cfg.LowStockThreshold,
	}, logger)

	services := Services{
		Auth:      service.NewAuthService(userRepo, cfg.JWTSecretKey, 0),
		Inventory: inventory,
		Reports:   service.NewReportService(saleRepo, inventory),
	}

	if cfg.AdminPassword != "" {
		if err := services.Auth.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("failed to seed admin user: %w", err)
		}
		logger.Info("Admin account ensured", zap.String("username", cfg.AdminUsername))
	}

	app.Router = NewRouter(services, app.db, logger)
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.Server = &http.Server{
		Addr:    a.cfg.RunAddress,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server", zap.String("address", a.cfg.RunAddress))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	return a.shutdown()
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) initDB(ctx context.Context) error {
	db, err := repository.NewDatabase(ctx, repository.DatabaseConfig{
		DSN:            a.cfg.DatabaseURI,
		MigrationsPath: a.cfg.MigrationsPath,
	})
	if err != nil {
		a.Logger.Error("Database initialization failed",
			zap.String("dsn", a.cfg.MaskDBPassword()),
			zap.Error(err))
		return fmt.Errorf("database initialization failed: %w", err)
	}

	a.db = db
	a.Logger.Info("Database initialized successfully",
		zap.String("migrations_path", a.cfg.MigrationsPath))
	return nil
}

func NewRouter(services Services, db controller.Pinger, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	authController := controller.NewAuthController(services.Auth, logger)
	productController := controller.NewProductController(services.Inventory, logger)
	reportController := controller.NewReportController(services.Reports, logger)
	healthController := controller.NewHealthController(db, logger)

	// Public routes
	r.Get("/health", healthController.Liveness)
	r.Get("/health/ready", healthController.Readiness)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/user/register", authController.Register)
	r.Post("/api/user/login", authController.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middlewareinternal.JWTAuthMiddleware(services.Auth, logger))

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", productController.List)
			r.Post("/", productController.Create)
			r.Get("/low-stock", productController.LowStock)
			r.Get("/{id}", productController.Get)
			r.Put("/{id}", productController.Update)
			r.Delete("/{id}", productController.Delete)
			r.Post("/{id}/sell", productController.Sell)
		})

		r.Get("/api/reports/sales", reportController.Sales)
		r.Get("/api/reports/low-stock", reportController.LowStock)
	})

	return r
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Server.Shutdown(ctx)
}
