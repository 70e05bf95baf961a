// Package bootstrap connects the backing services a command needs and opens
// the course store on top of them.
package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/studytracker/api/internal/cache"
	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/database"
	"github.com/studytracker/api/internal/store"
)

// Env holds the opened connections. DB and Redis are nil when the
// configuration does not need them or Redis was unreachable.
type Env struct {
	DB       *gorm.DB
	Redis    *cache.RedisCache
	Notifier store.Notifier
	Gateway  store.Gateway
}

// Open connects postgres and redis as the configuration requires, then
// opens the notifier and the store. Redis is optional unless it carries
// change notifications.
func Open(cfg *config.Config) (*Env, error) {
	env := &Env{}

	if cfg.UsesPostgres() {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		env.DB = db
	}

	if cfg.UsesRedis() {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			if cfg.Notifier == "redis" {
				env.Close()
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			// Rate limiting fails open without redis
			log.Printf("Warning: Failed to connect to Redis: %v", err)
		} else {
			env.Redis = redisCache
		}
	}

	notifierOpts := store.NotifierOptions{
		Kind:        cfg.Notifier,
		DB:          env.DB,
		DatabaseURL: cfg.DatabaseURL,
	}
	if env.Redis != nil {
		notifierOpts.PubSub = env.Redis
	}
	notifier, err := store.OpenNotifier(notifierOpts)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Notifier = notifier

	gateway, err := store.Open(store.Options{
		Driver:   cfg.StoreDriver,
		BoltPath: cfg.BoltPath,
		DB:       env.DB,
		Notifier: notifier,
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Gateway = gateway

	log.Printf("[Store] Opened %s store with %s notifier", driverName(cfg.StoreDriver), driverName(cfg.Notifier))
	return env, nil
}

// Close releases everything Open acquired. The gateway owns the notifier
// once it is open.
func (e *Env) Close() error {
	var errs []error
	switch {
	case e.Gateway != nil:
		errs = append(errs, e.Gateway.Close())
	case e.Notifier != nil:
		errs = append(errs, e.Notifier.Close())
	}
	if e.Redis != nil {
		errs = append(errs, e.Redis.Close())
	}
	if e.DB != nil {
		if sqlDB, err := e.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func driverName(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
