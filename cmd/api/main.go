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

	httptransport "github.com/spybee/helpdesk/internal/api/http"
	"github.com/spybee/helpdesk/internal/api/http/handlers"
	"github.com/spybee/helpdesk/internal/auth"
	"github.com/spybee/helpdesk/internal/config"
	"github.com/spybee/helpdesk/internal/dashboard"
	"github.com/spybee/helpdesk/internal/events"
	"github.com/spybee/helpdesk/internal/observability"
	"github.com/spybee/helpdesk/internal/persistence"
	"github.com/spybee/helpdesk/internal/repository"
	"github.com/spybee/helpdesk/internal/service"
	"github.com/spybee/helpdesk/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Dispatcher:     dispatcher,
	})
	authService := service.NewAuthService(*cfg, adminRepo)
	notificationService := service.NewNotificationService(dispatcher, redis, logger)
	worker.StartNotificationWorker(notificationService)

	registry := dashboard.NewRegistry(
		dashboard.NewRemote(ticketService),
		notificationService,
		metrics,
		logger,
		cfg.Sync,
	)
	worker.StartSessionReaper(ctx, registry, time.Minute, logger)

	adminMiddleware := auth.NewAdminMiddleware(authService.TokenManager(), adminRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		Admin:           handlers.NewAdminHandler(authService, ticketService, notificationService),
		Dashboard:       handlers.NewDashboardHandler(registry),
		AdminMiddleware: adminMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
