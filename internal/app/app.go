// Package app opens the backing stores and builds the services shared by the
// api server and the cli.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"libraryhub/database"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/events"
	"libraryhub/internal/http-api/service"
)

type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Services  *service.Services
	Publisher events.Publisher
	Log       *zap.Logger

	cache *cache.SettingsCache
}

// Open connects to the database and, when configured, redis and kafka. Redis
// and kafka are optional: a failure to reach them is logged and the app runs
// without the cache or with a no-op publisher.
func Open(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Open(cfg, log.Named("database"))
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db, Log: log, Publisher: events.Noop{}}

	if cfg.RedisURL != "" {
		c, err := cache.NewSettingsCache(cfg.RedisURL, cfg.SettingsCacheTTL)
		if err != nil {
			log.Warn("settings cache disabled", zap.Error(err))
		} else {
			a.cache = c
			log.Info("settings cache enabled", zap.Duration("ttl", cfg.SettingsCacheTTL))
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Warn("event publishing disabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.Error(err))
		} else {
			a.Publisher = events.NewKafkaPublisher(producer, cfg.KafkaTopic)
			log.Info("publishing events", zap.String("topic", cfg.KafkaTopic))
		}
	}

	deps := service.ServicesDeps{DB: db, Config: cfg, Publisher: a.Publisher, Log: log}
	if a.cache != nil {
		deps.Cache = a.cache
	}
	a.Services = service.NewServices(deps)
	return a, nil
}

// EnsureAdmin creates the bootstrap admin account from ADMIN_* when set.
func (a *App) EnsureAdmin(ctx context.Context) error {
	if !a.Config.HasBootstrapAdmin() {
		return nil
	}
	user, created, err := a.Services.Auth.EnsureAdmin(ctx, a.Config.AdminUsername, a.Config.AdminEmail, a.Config.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		a.Log.Info("bootstrap admin created", zap.String("username", user.Username))
	}
	return nil
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() error {
	var errs []error
	if err := a.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := database.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
