package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/store"
)

// Manager reads and writes sessions through the shared store and
// broadcasts the freshly rendered frame on every write.
//
// Save is deliberately two operations - SET then PUBLISH - with no
// atomicity between them. A subscriber that joins in the gap misses one
// publish; the stream engine covers this by emitting the current frame
// synchronously after its subscription is active.
type Manager struct {
	store store.Store
}

// NewManager creates a manager over the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Store exposes the underlying store for collaborators that subscribe to
// session topics.
func (m *Manager) Store() store.Store {
	return m.store
}

// Get loads the session at key. Absence is (nil, nil).
func (m *Manager) Get(ctx context.Context, key string) (*Session, error) {
	raw, found, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}
	if !found {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, apierror.Wrap(apierror.KindSerializationFailure, "corrupt session record", err)
	}
	return &s, nil
}

// Exists reports whether a session is present at key.
func (m *Manager) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := m.store.Exists(ctx, key)
	if err != nil {
		return false, apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}
	return ok, nil
}

// Save writes the session with the given TTL, then publishes the rendered
// current frame on the session's topic (topic == key).
func (m *Manager) Save(ctx context.Context, key string, s *Session, ttl time.Duration) error {
	record, err := json.Marshal(s)
	if err != nil {
		return apierror.Wrap(apierror.KindSerializationFailure, "failed to encode session", err)
	}
	if err := m.store.Set(ctx, key, string(record), ttl); err != nil {
		return apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}

	frame := s.CurrentFrame()
	payload, err := json.Marshal(frame)
	if err != nil {
		return apierror.Wrap(apierror.KindSerializationFailure, "failed to encode frame", err)
	}
	if err := m.store.Publish(ctx, key, payload); err != nil {
		return apierror.Wrap(apierror.KindStoreFailure, "bus error", err)
	}

	logger.Store().Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Msg("Session saved and frame published")
	return nil
}

// List returns the bare session ids of every live session owned by the
// user, by scanning the owned key prefix and stripping it.
func (m *Manager) List(ctx context.Context, userID string) ([]string, error) {
	keys, err := m.store.Scan(ctx, OwnedPattern(userID))
	if err != nil {
		return nil, apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := TrimOwnedPrefix(userID, key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
