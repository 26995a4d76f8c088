package di

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-directory/cmd/api/infrastructure"
	"user-directory/internal/adapter/diagnostics"
	ginhandler "user-directory/internal/adapter/gin/handler"
	"user-directory/internal/adapter/gin/middleware"
	"user-directory/internal/adapter/live"
	"user-directory/internal/adapter/userapi"
	"user-directory/internal/config"
	"user-directory/internal/usecase/user"
	"user-directory/internal/view"
	redisclient "user-directory/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Diagnostics *diagnostics.Store
	UserAPI     *userapi.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	ViewHandler *ginhandler.ViewHandler
	LiveHub     *live.Hub
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	// Initialize diagnostics store
	db, err := infrastructure.NewDiagnosticsDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize diagnostics database: %w", err)
	}
	c.DB = db

	var recorder diagnostics.Recorder = diagnostics.NopRecorder{}
	var recent ginhandler.RecentLister
	if db != nil {
		store, err := diagnostics.NewStore(db, l.Named("diagnostics"))
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize diagnostics store: %w", err)
		}
		c.Diagnostics = store
		recorder, recent = store, store
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	// Initialize rate limiter
	if rdb != nil {
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			clockwork.NewRealClock(),
			l.Named("rate_limiter"),
		)
	}

	// Initialize upstream client
	c.UserAPI = userapi.NewClient(userapi.Config{
		BaseURL:    cfg.API.BaseURL,
		AppVersion: cfg.API.AppVersion,
		MaxRetries: cfg.API.MaxRetries,
		RetryDelay: cfg.API.RetryDelay(),
		Timeout:    cfg.API.Timeout(),
	}, recorder, l.Named("userapi"))

	// Initialize use case
	c.UserUC = user.New(c.UserAPI, l.Named("usecase"))

	viewOpts := view.Options{
		Clock:          clockwork.NewRealClock(),
		SearchDebounce: cfg.View.SearchDebounce(),
		Logger:         l,
	}

	// Initialize handlers
	c.ViewHandler = ginhandler.NewViewHandler(c.UserUC, viewOpts, recent, l.Named("http"))
	c.LiveHub = live.NewHub(c.UserUC, viewOpts, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Disconnect live sessions
	if c.LiveHub != nil {
		if err := c.LiveHub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close live sessions: %w", err))
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
