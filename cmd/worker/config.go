package main

import (
	"os"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/pkg/container"
)

// Config holds the worker-only settings; the rest comes from the container
type Config struct {
	RedisOpt    asynq.RedisClientOpt
	Concurrency int
	SyncCron    string
	SyncLimit   time.Duration
}

// loadConfig derives the worker settings from the container config
func loadConfig(c *container.Container) *Config {
	cfg := &Config{
		RedisOpt:    c.RedisConnOpt(),
		Concurrency: 4,
		SyncCron:    c.Config.Sync.Cron,
		SyncLimit:   c.Config.Sync.MaxExecutionTime,
	}
	if v, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); err == nil && v > 0 {
		cfg.Concurrency = v
	}

	log.Info().
		Str("redis", cfg.RedisOpt.Addr).
		Int("concurrency", cfg.Concurrency).
		Str("sync_cron", cfg.SyncCron).
		Msg("[Config] Worker configuration loaded")

	return cfg
}
