// Package store provides the durable session store and the message bus.
//
// Both sit on the same external Redis endpoint: the key/value half carries
// sessions and credential material with TTLs, the pub/sub half fans session
// frames out to every connected stream driver, on this instance or any
// other. The two halves are deliberately not transactional - a Set followed
// by a Publish is two operations, and callers that need the gap covered
// emit the current state synchronously after subscribing.
//
// Two implementations exist: Redis for production and Memory for tests.
package store

import (
	"context"
	"time"
)

// Store is the key/value and pub/sub surface the rest of the service
// depends on.
type Store interface {
	// Get returns the raw value at key. The second result is false when
	// the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value at key with the given TTL. A zero TTL persists the
	// key indefinitely.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX writes value only when key is absent and reports whether this
	// caller won the write. A zero TTL persists the key indefinitely.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Scan returns all keys matching the glob pattern. Implementations
	// iterate with a bounded batch size; the result order is unspecified.
	Scan(ctx context.Context, pattern string) ([]string, error)

	// Publish broadcasts payload on topic. Payloads are opaque to the bus.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe opens a subscription on topic. The subscription is active
	// when Subscribe returns: every publish issued afterwards is delivered
	// until Close.
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is one active topic subscription.
type Subscription interface {
	// Channel returns the receive channel. It is closed when the
	// subscription ends, whether by Close or by connection loss.
	Channel() <-chan []byte

	// Close releases the subscription and closes the receive channel.
	Close() error
}
