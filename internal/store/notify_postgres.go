package store

import (
	"context"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgChannel = "studytracker_changes"

// PostgresNotifier uses LISTEN/NOTIFY on the course database.
type PostgresNotifier struct {
	db  *gorm.DB
	dsn string
}

func NewPostgresNotifier(db *gorm.DB, dsn string) *PostgresNotifier {
	return &PostgresNotifier{db: db, dsn: dsn}
}

func (n *PostgresNotifier) Notify(ctx context.Context, path string) error {
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", pgChannel, path).Error
}

func (n *PostgresNotifier) Listen(ctx context.Context) (<-chan string, error) {
	listener := pq.NewListener(n.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("[Store] Postgres listener event %d: %v", ev, err)
		}
	})
	if err := listener.Listen(pgChannel); err != nil {
		listener.Close()
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		defer listener.Close()

		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case notification := <-listener.Notify:
				// nil follows a reconnect; notifications may have been lost.
				path := CoursesPath
				if notification != nil {
					path = notification.Extra
				}
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			case <-ping.C:
				go listener.Ping()
			}
		}
	}()

	return out, nil
}

func (n *PostgresNotifier) Close() error {
	return nil
}
