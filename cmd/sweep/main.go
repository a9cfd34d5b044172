package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"invitebot-backend/internal/config"
	"invitebot-backend/internal/jobs"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/repository/sqlstore"
	"invitebot-backend/internal/scheduler"
)

// Standalone maintenance runner for deployments that keep the sweep out of
// the bot process.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	runOnce := flag.Bool("run-once", false, "Run the sweep once and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting sweep runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	db, err := sqlstore.Open(cfg.Database, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := sqlstore.NewStore(db)
	jobRunner := jobs.NewJobRunner(store.InviteLinkRepository, cfg)

	if *runOnce {
		jobRunner.SweepExpiredLinks()
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Run until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("Shutting down")
}
