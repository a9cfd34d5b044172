package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "invitebot-backend/internal/api/http"
	"invitebot-backend/internal/config"
	"invitebot-backend/internal/handler"
	"invitebot-backend/internal/jobs"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/repository/sqlstore"
	"invitebot-backend/internal/scheduler"
	"invitebot-backend/internal/service"
	"invitebot-backend/internal/transport/telegram"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Invite Bot...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Target group", "group_id", cfg.Telegram.GroupID, "relay_configured", cfg.RelayConfigured())

	// Initialize Database
	db, err := sqlstore.Open(cfg.Database, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Database ready", "driver", cfg.Database.Driver)

	// Initialize Repositories
	store := sqlstore.NewStore(db)

	// Initialize Transport
	tg, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.GroupID)
	if err != nil {
		logger.Error("Failed to initialize Telegram client", "error", err)
		log.Fatalf("Failed to initialize Telegram client: %v", err)
	}

	// Initialize Services
	directorySvc := service.NewDirectoryService(store.UserRepository)
	invitationSvc := service.NewInvitationService(
		store.UserRepository,
		store.InviteLinkRepository,
		store.InvitationLogRepository,
		tg,
		time.Duration(cfg.Invite.TTLMinutes)*time.Minute,
		cfg.Invite.MaxBatch,
	)
	joinSvc := service.NewJoinService(
		store.UserRepository,
		store.InviteLinkRepository,
		store.InvitationLogRepository,
		tg,
		cfg.Telegram.GroupID,
	)
	relaySvc := service.NewRelayService(tg, cfg.Telegram.GroupID, cfg.Telegram.SourceTopicID, cfg.Telegram.DestTopicID)

	h := handler.New(directorySvc, invitationSvc, joinSvc, relaySvc, tg, cfg.Telegram.GroupID)
	tg.Bind(h)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(store.InviteLinkRepository, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Initialize Ops API
	if cfg.OpsAPI.Secret != "" {
		opsHandler := httpapi.NewOpsHandler(invitationSvc, db, cfg.OpsAPI.Secret)
		opsServer := &http.Server{Addr: cfg.GetOpsAPIAddress(), Handler: opsHandler.Router()}
		go func() {
			logger.Info("Ops API listening", "address", cfg.GetOpsAPIAddress())
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Ops API server failed", "error", err)
			}
		}()
		defer opsServer.Close()
	} else {
		logger.Info("Ops API disabled: no secret configured")
	}

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Bot polling for updates")
	tg.Run(ctx)
	logger.Info("Shutting down")
}
