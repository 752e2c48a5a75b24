package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/realtime-svg/realtime-svg/internal/logger"
)

// scanBatchSize bounds how many keys one SCAN round trip may return.
const scanBatchSize = 100

// Redis implements Store on a single Redis (or Redis-compatible) endpoint.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the store at the given URL (redis:// or rediss://)
// and verifies the connection with a ping.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client, mainly for tests that need
// to share a connection.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	won, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx %s: %w", key, err)
	}
	return won, nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return n > 0, nil
}

// Scan iterates the keyspace with cursor-based SCAN until the cursor
// returns to zero.
func (r *Redis) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (r *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription and waits for the server's
// subscribe confirmation before returning, so a caller that publishes
// after Subscribe returns is guaranteed delivery to itself.
func (r *Redis) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan []byte),
		done:   make(chan struct{}),
	}
	go sub.pump(topic)
	return sub, nil
}

type redisSubscription struct {
	pubsub    *redis.PubSub
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// pump copies payloads from the go-redis message channel until the
// subscription closes, then closes the outbound channel so consumers
// observe end-of-stream. The done channel unblocks a pending send when
// the consumer closes the subscription without draining it.
func (s *redisSubscription) pump(topic string) {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
	logger.Store().Debug().Str("topic", topic).Msg("Subscription channel closed")
}

func (s *redisSubscription) Channel() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.pubsub.Close()
}
