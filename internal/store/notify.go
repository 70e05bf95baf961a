package store

import (
	"context"
	"sync"
)

// Notifier carries "path changed" events between writers and subscribers.
// Events may be coalesced: a listener is only guaranteed to receive at least
// one event after every change.
type Notifier interface {
	Notify(ctx context.Context, path string) error
	Listen(ctx context.Context) (<-chan string, error)
	Close() error
}

// LocalNotifier broadcasts changes inside the current process.
type LocalNotifier struct {
	mu        sync.Mutex
	listeners map[chan string]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{listeners: make(map[chan string]struct{})}
}

func (n *LocalNotifier) Notify(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		// A pending event already forces a reload after this change.
		select {
		case ch <- path:
		default:
		}
	}
	return nil
}

func (n *LocalNotifier) Listen(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 1)

	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.listeners, ch)
		close(ch)
		n.mu.Unlock()
	}()

	return ch, nil
}

func (n *LocalNotifier) Close() error {
	return nil
}
