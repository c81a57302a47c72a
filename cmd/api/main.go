package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-dashboard/internal/api/http"
	"github.com/spec-kit/sla-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/sla-dashboard/internal/auth"
	"github.com/spec-kit/sla-dashboard/internal/cache"
	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/events"
	"github.com/spec-kit/sla-dashboard/internal/observability"
	"github.com/spec-kit/sla-dashboard/internal/persistence"
	"github.com/spec-kit/sla-dashboard/internal/repository"
	"github.com/spec-kit/sla-dashboard/internal/service"
	"github.com/spec-kit/sla-dashboard/internal/sla"
	"github.com/spec-kit/sla-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	calendar, err := cfg.SLA.Calendar()
	if err != nil {
		logger.Fatal("invalid sla calendar", zap.Error(err))
	}
	policies, err := cfg.SLA.Policies()
	if err != nil {
		logger.Fatal("invalid sla policies", zap.Error(err))
	}
	engine := sla.NewEngine(calendar, policies)

	pool := pg.PoolHandle()
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo:       repository.NewTicketRepository(pool),
		ServiceOrderRepo: repository.NewServiceOrderRepository(pool),
		Engine:           engine,
		MetricsCache:     cache.NewMetricsCache(redis.Handle(), cfg.Cache.MetricsTTL()),
		PolicyTable:      cfg.SLA.PolicyTable,
		Logger:           logger,
	})
	authService := service.NewAuthService(cfg.Auth)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	var monitor *worker.SLAMonitor
	if pool != nil {
		monitor = worker.NewSLAMonitor(dashboard, engine, metrics, dispatcher, cfg.SLA.MonitorInterval(), logger)
	}
	waitWorkers := worker.Start(ctx, monitor, notifications)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	var redisPinger handlers.Pinger
	if redis.Handle() != nil {
		redisPinger = redis
	}

	routes := httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, engine, pg, redisPinger),
		Auth:    handlers.NewAuthHandler(authService),
		Tickets: handlers.NewTicketsHandler(dashboard),
		SLA: handlers.NewSLAHandler(dashboard, handlers.StreamOptions{
			TickInterval:  cfg.SLA.LiveTick(),
			WatchInterval: cfg.SLA.LiveWatch(),
		}, logger),
		Metrics: adaptor.HTTPHandler(metrics.Handler()),
	}
	if cfg.Auth.Enabled {
		routes.AuthMiddleware = auth.NewAuthMiddleware(authService.TokenManager())
	} else {
		logger.Warn("AUTH_ENABLED=false; api routes are public")
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	waitWorkers()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
