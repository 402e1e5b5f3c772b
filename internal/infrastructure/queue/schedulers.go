package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tvshow-catalog/internal/domains/tvshow/job"
	"tvshow-catalog/internal/shared"
	"tvshow-catalog/pkg/logger"
)

// Scheduler enqueues periodic tasks on cron specs.
type Scheduler struct {
	scheduler *asynq.Scheduler
	syncCron  string
	syncLimit time.Duration
}

// NewScheduler creates a scheduler for the catalog sync. syncLimit bounds a
// single run; the task gets some headroom on top of it for the database write.
func NewScheduler(redisOpt asynq.RedisConnOpt, syncCron string, syncLimit time.Duration) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		syncCron:  syncCron,
		syncLimit: syncLimit,
	}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	return s.registerCatalogSyncJob()
}

// ================================================
// JOB: Catalog Sync (SYNC_CRON, daily at 3 AM by default)
// ================================================
func (s *Scheduler) registerCatalogSyncJob() error {
	if s.syncCron == "" {
		logger.Info("Catalog sync schedule disabled (SYNC_CRON is empty)", map[string]interface{}{})
		return nil
	}

	task, err := job.NewCatalogSyncTask("scheduler")
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.syncCron,
		task,
		CatalogSyncOptions(s.syncLimit)...,
	)
	if err != nil {
		logger.Error("Failed to register CatalogSync job", err)
		return fmt.Errorf("register catalog sync on %q: %w", s.syncCron, err)
	}

	logger.Info("✓ Registered CatalogSync", map[string]interface{}{"cron": s.syncCron})
	return nil
}

// CatalogSyncOptions are shared by the scheduled and the on-demand task.
// Unique keeps a second run from being queued while one is pending.
func CatalogSyncOptions(syncLimit time.Duration) []asynq.Option {
	timeout := syncLimit + 5*time.Minute
	return []asynq.Option{
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(timeout),
		asynq.Unique(timeout),
	}
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
