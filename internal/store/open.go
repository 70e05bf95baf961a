package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Options selects and configures a store driver.
type Options struct {
	Driver   string
	BoltPath string
	DB       *gorm.DB
	Notifier Notifier
}

// Open returns the gateway for opts.Driver: "memory", "bolt" or "postgres".
func Open(opts Options) (Gateway, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryGateway(opts.Notifier), nil
	case "bolt":
		return OpenBolt(opts.BoltPath, opts.Notifier)
	case "postgres":
		if opts.DB == nil {
			return nil, fmt.Errorf("store: postgres driver requires a database connection")
		}
		return NewGormGateway(opts.DB, opts.Notifier), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q (supported: memory, bolt, postgres)", opts.Driver)
	}
}

// NotifierOptions selects and configures a change notifier.
type NotifierOptions struct {
	Kind        string
	PubSub      PubSub
	DB          *gorm.DB
	DatabaseURL string
}

// OpenNotifier returns the notifier for opts.Kind: "local", "redis" or
// "postgres".
func OpenNotifier(opts NotifierOptions) (Notifier, error) {
	switch opts.Kind {
	case "", "local":
		return NewLocalNotifier(), nil
	case "redis":
		if opts.PubSub == nil {
			return nil, fmt.Errorf("store: redis notifier requires a redis connection")
		}
		return NewRedisNotifier(opts.PubSub), nil
	case "postgres":
		if opts.DB == nil {
			return nil, fmt.Errorf("store: postgres notifier requires a database connection")
		}
		return NewPostgresNotifier(opts.DB, opts.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("store: unknown notifier %q (supported: local, redis, postgres)", opts.Kind)
	}
}
