package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-automation/internal/api/http"
	"github.com/spec-kit/helpdesk-automation/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-automation/internal/auth"
	"github.com/spec-kit/helpdesk-automation/internal/automation"
	"github.com/spec-kit/helpdesk-automation/internal/config"
	"github.com/spec-kit/helpdesk-automation/internal/dispatch"
	"github.com/spec-kit/helpdesk-automation/internal/events"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
	"github.com/spec-kit/helpdesk-automation/internal/persistence"
	"github.com/spec-kit/helpdesk-automation/internal/repository"
	"github.com/spec-kit/helpdesk-automation/internal/service"
	"github.com/spec-kit/helpdesk-automation/internal/sla"
	"github.com/spec-kit/helpdesk-automation/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	policyRepo := repository.NewSlaPolicyRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	instanceRepo := repository.NewSlaInstanceRepository(pool)

	metrics := observability.NewMetrics()
	bus := events.NewInMemoryDispatcher(logger)

	engine := automation.NewEngine(automation.EngineDependencies{
		Rules:   ruleRepo,
		Tickets: ticketRepo,
		Audit:   auditRepo,
		Events:  bus,
		Metrics: metrics,
		Logger:  logger,
	})

	queue := dispatch.NewTaskQueue(redis.Client, cfg.Queue.KeyPrefix, cfg.Queue.FailedTaskRetention)
	dispatcher := dispatch.NewAutomationDispatcher(queue, engine, cfg.Queue, metrics, logger)

	workerPool := worker.NewPool(queue, engine, cfg.Queue, bus, metrics, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	slaClock := sla.NewClock(cfg.Sla.AtRiskFraction, logger)
	slaService := service.NewSlaService(service.SlaDependencies{
		InstanceRepo: instanceRepo,
		PolicyRepo:   policyRepo,
		ScheduleRepo: scheduleRepo,
		TicketRepo:   ticketRepo,
		Clock:        slaClock,
		Dispatcher:   dispatcher,
		Events:       bus,
		Metrics:      metrics,
		Logger:       logger,
	})

	sweeper, err := worker.StartSlaSweeper(cfg.Sla.SweepSpec, slaService, logger)
	if err != nil {
		logger.Fatal("failed to start sla sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	automationService := service.NewAutomationService(service.AutomationDependencies{
		RuleRepo:   ruleRepo,
		AuditRepo:  auditRepo,
		Dispatcher: dispatcher,
		Queue:      queue,
	})

	notificationService := service.NewNotificationService(bus, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Events:         handlers.NewEventsHandler(automationService, slaService, logger),
		Rules:          handlers.NewRulesHandler(automationService),
		Sla:            handlers.NewSlaHandler(slaService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("automation service started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("dispatch_mode", dispatcher.Mode().String()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
