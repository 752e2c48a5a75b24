package store

import (
	"context"
	"path"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests. It mirrors the semantics
// the service relies on: TTL expiry, set-if-absent, glob scans, and topic
// fan-out where a subscriber receives every publish issued between
// Subscribe and Close.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	subs    map[string][]*memorySubscription
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		subs:    make(map[string][]*memorySubscription),
	}
}

func (m *Memory) get(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.get(key)
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiry(ttl)}
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: expiry(ttl)}
	return true, nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(key)
	return ok, nil
}

func (m *Memory) Scan(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.entries {
		if _, live := m.get(key); !live {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *Memory) Publish(ctx context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	subs := append([]*memorySubscription(nil), m.subs[topic]...)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(payload)
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{
		store: m,
		topic: topic,
		ch:    make(chan []byte, 64),
	}
	m.mu.Lock()
	m.subs[topic] = append(m.subs[topic], sub)
	m.mu.Unlock()
	return sub, nil
}

type memorySubscription struct {
	store  *Memory
	topic  string
	ch     chan []byte
	closed sync.Once
}

func (s *memorySubscription) deliver(payload []byte) {
	defer func() {
		// A concurrent Close may have closed the channel; a dropped
		// delivery matches the bus's best-effort contract.
		_ = recover()
	}()
	s.ch <- payload
}

func (s *memorySubscription) Channel() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.closed.Do(func() {
		s.store.mu.Lock()
		subs := s.store.subs[s.topic]
		for i, sub := range subs {
			if sub == s {
				s.store.subs[s.topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.store.mu.Unlock()
		close(s.ch)
	})
	return nil
}
