package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/config"
	tvHandler "tvshow-catalog/internal/domains/tvshow/handler"
	"tvshow-catalog/internal/domains/tvshow/model"
	tvRepo "tvshow-catalog/internal/domains/tvshow/repository"
	tvService "tvshow-catalog/internal/domains/tvshow/service"
	"tvshow-catalog/internal/domains/tvshow/tvsync"
	infraCache "tvshow-catalog/internal/infrastructure/cache"
	"tvshow-catalog/internal/infrastructure/database"
	"tvshow-catalog/internal/infrastructure/tvmaze"
	"tvshow-catalog/pkg/cache"
	"tvshow-catalog/pkg/pagination"
)

// PageNamespace prefixes every cached listing page key
const PageNamespace = "tvshow"

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient // nil with the memory cache backend
	Cache       cache.Cache             // page store
	AsynqClient *asynq.Client
	TVMaze      *tvmaze.Client

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================
	ShowRepo      tvRepo.ShowRepository
	GenreRepo     tvRepo.GenreRepository
	ShowGenreRepo tvRepo.ShowGenreRepository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================
	Pages       *pagination.PageCollection[model.ShowView]
	ShowService tvService.ServiceInterface
	SyncManager *tvsync.Manager

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	ShowHandler *tvHandler.ShowHandler
	SyncHandler *tvHandler.SyncHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads config, connects the database and the page store, then
// wires repositories, services and handlers in that order.
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig builds the container from an already loaded config.
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log.Info().Str("environment", cfg.App.Environment).Msg("✅ Config loaded")

	if err := c.initDatabase(); err != nil {
		c.Cleanup()
		return nil, err
	}

	if err := c.initCache(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.AsynqClient = asynq.NewClient(c.RedisConnOpt())

	c.initRepositories()
	log.Info().Msg("✅ Repositories initialized")

	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	log.Info().Msg("✅ Services initialized")

	c.initHandlers()
	log.Info().Msg("✅ Handlers initialized")

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initDatabase() error {
	log.Info().Msg("🗄️  Connecting to PostgreSQL...")

	db := database.NewPostgresDB(&c.Config.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	log.Info().Msg("✅ Database connected")
	return nil
}

func (c *Container) initCache() error {
	switch c.Config.Cache.Backend {
	case config.CacheBackendRedis:
		log.Info().Msg("🔴 Connecting to Redis page store...")

		rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
		c.Redis = rc

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rc.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		c.Cache = infraCache.NewRedisCache(rc.Client)
		log.Info().Msg("✅ Redis page store ready")
	default:
		c.Cache = infraCache.NewMemoryCache(c.Config.Cache.SweepInterval)
		log.Info().Msg("✅ In-memory page store ready")
	}
	return nil
}

// ========================================
// LAYER INITIALIZERS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.ShowRepo = tvRepo.NewPostgresShowRepository(pool)
	c.GenreRepo = tvRepo.NewPostgresGenreRepository(pool)
	c.ShowGenreRepo = tvRepo.NewPostgresShowGenreRepository(pool)
}

func (c *Container) initServices() error {
	pages, err := pagination.NewPageCollection[model.ShowView](c.Cache, pagination.Options{
		MaxPageSize:       c.Config.Pagination.MaxPageSize,
		SlidingExpiration: c.Config.Cache.SlidingExpiration,
		RefreshTimeout:    c.Config.Cache.RefreshTimeout,
		BuildTimeout:      c.Config.Cache.BuildTimeout,
		Namespace:         PageNamespace,
	})
	if err != nil {
		return err
	}
	c.Pages = pages

	c.ShowService = tvService.NewShowService(c.ShowRepo, c.GenreRepo, c.ShowGenreRepo, c.Pages)

	c.TVMaze = tvmaze.NewClient(tvmaze.Config{
		BaseURL:          c.Config.Sync.APIBaseURL,
		MaxExecutionTime: c.Config.Sync.MaxExecutionTime,
		RequestTimeout:   c.Config.Sync.RequestTimeout,
	})

	c.SyncManager = tvsync.NewManager(
		tvsync.NewPostgresReader(c.DB.Pool),
		c.TVMaze,
		tvsync.NewPostgresWriter(c.DB.Pool),
		c.Pages,
		tvsync.Filter{EarliestPremiere: c.Config.Sync.EarliestPremiere()},
	)

	return nil
}

func (c *Container) initHandlers() {
	c.ShowHandler = tvHandler.NewShowHandler(c.ShowService)
	c.SyncHandler = tvHandler.NewSyncHandler(c.AsynqClient, c.Config.Sync.MaxExecutionTime)
}

// RedisConnOpt is the asynq connection for the task queue. The queue always
// lives in Redis, whichever page store backend is configured.
func (c *Container) RedisConnOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases every resource the container opened. Safe on a partially
// built container.
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if mc, ok := c.Cache.(*infraCache.MemoryCache); ok {
		_ = mc.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	if c.DB != nil {
		_ = c.DB.Close()
		log.Info().Msg("✅ Database connections closed")
	}

	log.Info().Msg("✅ Container cleanup completed")
}
