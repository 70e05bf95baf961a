package store

import (
	"context"
)

// ChangesChannel is the pub/sub channel shared by every API instance.
const ChangesChannel = "studytracker:changes"

// PubSub is the subset of the redis cache used for change notification.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}

// RedisNotifier fans changes out through redis so that every instance
// sharing a store sees every write.
type RedisNotifier struct {
	pubsub  PubSub
	channel string
}

func NewRedisNotifier(pubsub PubSub) *RedisNotifier {
	return &RedisNotifier{pubsub: pubsub, channel: ChangesChannel}
}

func (n *RedisNotifier) Notify(ctx context.Context, path string) error {
	return n.pubsub.Publish(ctx, n.channel, path)
}

func (n *RedisNotifier) Listen(ctx context.Context) (<-chan string, error) {
	return n.pubsub.Subscribe(ctx, n.channel)
}

func (n *RedisNotifier) Close() error {
	return nil
}
