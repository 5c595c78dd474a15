package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/app"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/config"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/infra/handler"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/middleware"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return 1
	}

	setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetry := cfg.Telemetry

	tracerProvider := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: telemetry.ServiceVersion,
		Environment:    telemetry.Environment,
	})
	meterProvider := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: telemetry.ServiceVersion,
		Environment:    telemetry.Environment,
	})

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown tracer provider", "error", err)
		}

		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown meter provider", "error", err)
		}
	}()

	reminderMetrics, err := metrics.NewReminderMetrics(meterProvider.Meter("reminder"))
	if err != nil {
		slog.Error("failed to create reminder metrics", "error", err)

		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics(meterProvider.Meter("http"))
	if err != nil {
		slog.Error("failed to create http metrics", "error", err)

		return 1
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)

		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)

		return 1
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}()

	n, err := initNotifier(ctx, cfg.Notifier)
	if err != nil {
		slog.Error("failed to initialize notifier", "driver", cfg.Notifier.Driver, "error", err)

		return 1
	}

	defer func() {
		if err := n.Close(); err != nil {
			slog.Warn("failed to close notifier", "error", err)
		}
	}()

	policy := domain.DefaultReminderPolicy()

	reminderRepo := repository.NewReminderRepository(db, policy.MaxReminders)
	reminderUseCase := app.NewReminderUseCase(reminderRepo, n, domain.SystemClock{}, policy, app.Options{
		SendInterval: cfg.Scheduler.SendInterval,
		SendTimeout:  cfg.Scheduler.SendTimeout,
		Metrics:      reminderMetrics,
	})

	driver, err := scheduler.New(reminderUseCase, scheduler.Config{
		Spec:         cfg.Scheduler.Spec,
		Location:     cfg.Scheduler.Location,
		StartupDelay: cfg.Scheduler.StartupDelay,
	}, slog.Default())
	if err != nil {
		slog.Error("failed to create reminder driver", "error", err)

		return 1
	}

	if cfg.Scheduler.Enabled {
		if err := driver.Start(ctx); err != nil {
			slog.Error("failed to start reminder driver", "error", err)

			return 1
		}
	} else {
		slog.Warn("reminder scheduler disabled, passes run only on manual trigger")
	}

	reminderHandler := handler.NewReminderHandler(driver, reminderUseCase)

	router := setupRouter(reminderHandler, httpMetrics)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "address", cfg.Server.Address())
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)

			exitCode = 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := driver.Stop(shutdownCtx); err != nil {
		slog.Error("reminder driver did not stop cleanly", "error", err)

		exitCode = 1
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)

		exitCode = 1
	}

	cancel()

	slog.Info("server exited", "code", exitCode)

	return exitCode
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(slog.Default(), cfg.SlowThreshold),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func setupRouter(reminderHandler *handler.ReminderHandler, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	router := gin.New()

	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/ping"},
		Module:      logging.ModuleHTTP,
		TracerName:  "github.com/KasumiMercury/primind-overdue-reminder/http",
		HTTPMetrics: httpMetrics,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := router.Group("/api/v1")
	reminderHandler.RegisterRoutes(v1)

	return router
}

func setupLogger(cfg config.LogConfig) {
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, logging.ParseLevel(cfg.Level))))
}
