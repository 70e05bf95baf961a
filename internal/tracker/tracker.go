// Package tracker holds the live course collection and turns user intents
// into store writes.
package tracker

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/store"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrCourseNotFound = errors.New("course not found")
)

// state is one immutable generation of the collection. next is closed when
// a newer generation replaces it.
type state struct {
	courses model.Collection
	version uint64
	next    chan struct{}
}

type Tracker struct {
	gateway    store.Gateway
	current    atomic.Pointer[state]
	now        func() time.Time
	onSnapshot func(model.Collection)
}

type Option func(*Tracker)

// WithClock sets the clock used to date new sessions and exams.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// OnSnapshot registers a hook called after every applied snapshot.
func OnSnapshot(fn func(model.Collection)) Option {
	return func(t *Tracker) { t.onSnapshot = fn }
}

func New(gateway store.Gateway, opts ...Option) *Tracker {
	t := &Tracker{gateway: gateway, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	t.current.Store(&state{courses: model.Collection{}, next: make(chan struct{})})
	return t
}

// Run follows the course collection until ctx is done. Cancelling ctx
// closes the underlying subscription.
func (t *Tracker) Run(ctx context.Context) error {
	sub, err := t.gateway.Subscribe(ctx, store.CoursesPath)
	if err != nil {
		return err
	}
	defer sub.Close()

	log.Println("[Tracker] Subscribed to courses")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-sub.C:
			if !ok {
				return ctx.Err()
			}
			t.apply(snapshot)
		}
	}
}

func (t *Tracker) apply(snapshot model.Collection) {
	if snapshot == nil {
		snapshot = model.Collection{}
	}
	prev := t.current.Load()
	t.current.Store(&state{courses: snapshot, version: prev.version + 1, next: make(chan struct{})})
	close(prev.next)

	if t.onSnapshot != nil {
		t.onSnapshot(snapshot)
	}
}

// Snapshot returns the newest collection. Callers must not modify it.
func (t *Tracker) Snapshot() model.Collection {
	return t.current.Load().courses
}

// Version counts the snapshots applied so far; 0 means none yet.
func (t *Tracker) Version() uint64 {
	return t.current.Load().version
}

// Await blocks until a snapshot satisfies match or ctx is done, and returns
// the last snapshot seen.
func (t *Tracker) Await(ctx context.Context, match func(model.Collection) bool) (model.Collection, error) {
	for {
		s := t.current.Load()
		if s.version > 0 && match(s.courses) {
			return s.courses, nil
		}
		select {
		case <-s.next:
		case <-ctx.Done():
			return s.courses, ctx.Err()
		}
	}
}
