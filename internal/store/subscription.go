package store

import (
	"context"
	"log"

	"github.com/studytracker/api/internal/model"
)

// Subscription delivers full-collection snapshots on C. Only the newest
// snapshot is kept for a slow reader. C is closed once the subscription ends.
type Subscription struct {
	C      <-chan model.Collection
	cancel context.CancelFunc
	done   chan struct{}
}

// Close ends the subscription and waits for its goroutine to exit.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

type loadFunc func(ctx context.Context) (model.Collection, error)

// subscribe starts listening before the first load so no change between the
// initial snapshot and the first notification is missed.
func subscribe(parent context.Context, notifier Notifier, path string, load loadFunc) (*Subscription, error) {
	if err := collectionPath(path); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	changes, err := notifier.Listen(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan model.Collection, 1)
	sub := &Subscription{C: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer close(out)

		emit := func() {
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[Store] Failed to load %s snapshot: %v", path, err)
				}
				return
			}
			offer(out, snapshot)
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return sub, nil
}

// offer puts snapshot in the one-slot buffer, discarding any snapshot the
// reader has not taken yet.
func offer(out chan model.Collection, snapshot model.Collection) {
	for {
		select {
		case out <- snapshot:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

// FirstSnapshot reads the collection once and closes the subscription.
func FirstSnapshot(ctx context.Context, g Gateway) (model.Collection, error) {
	sub, err := g.Subscribe(ctx, CoursesPath)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	select {
	case courses, ok := <-sub.C:
		if !ok {
			return nil, ctx.Err()
		}
		return courses, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
