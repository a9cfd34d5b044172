package jobs

import (
	"context"
	"time"

	"invitebot-backend/internal/config"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/repository"
)

// JobRunner coordinates scheduled maintenance jobs.
type JobRunner struct {
	linkRepo repository.InviteLinkRepository
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(linkRepo repository.InviteLinkRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		linkRepo: linkRepo,
		config:   cfg,
	}
}

// Config returns the loaded configuration.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// SweepExpiredLinks clears the active flag on expired, never-consumed links.
// Purely storage hygiene: expiry is already enforced lazily by the ledger
// queries, and swept rows keep a null used_at so they stay distinguishable
// from consumed ones.
func (jr *JobRunner) SweepExpiredLinks() {
	jr.runWithRecovery("SweepExpiredLinks", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		count, err := jr.linkRepo.DeactivateExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Expired link sweep failed", "error", err)
			return
		}
		logger.Info("Swept expired invite links", "count", count)
	})
}
