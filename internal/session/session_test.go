package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-svg/realtime-svg/internal/store"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "demo", PublicKey("demo"))
	assert.Equal(t, "user:alice:session:demo", OwnedKey("alice", "demo"))
	assert.Equal(t, "user:alice:session:*", OwnedPattern("alice"))
	assert.Equal(t, "user:alice:data", UserRecordKey("alice"))

	id, ok := TrimOwnedPrefix("alice", "user:alice:session:demo")
	assert.True(t, ok)
	assert.Equal(t, "demo", id)

	_, ok = TrimOwnedPrefix("bob", "user:alice:session:demo")
	assert.False(t, ok)
}

func TestSessionJSONShape(t *testing.T) {
	// Wire format must stay cross-instance compatible: owner is omitted
	// for public sessions.
	public := New("<svg>{{x}}</svg>", map[string]any{"x": "hi"})
	raw, err := json.Marshal(public)
	require.NoError(t, err)
	assert.JSONEq(t, `{"template":"<svg>{{x}}</svg>","args":{"x":"hi"}}`, string(raw))

	owned := NewOwned("<svg/>", nil, "alice")
	raw, err = json.Marshal(owned)
	require.NoError(t, err)
	assert.JSONEq(t, `{"template":"<svg/>","args":{},"owner":"alice"}`, string(raw))
}

func TestReplaceArgsIsWholesale(t *testing.T) {
	s := New("<svg>{{a}}{{b}}</svg>", map[string]any{"a": "1", "b": "2"})
	s.ReplaceArgs(map[string]any{"a": "3"})
	assert.Equal(t, map[string]any{"a": "3"}, s.Args)

	s.ReplaceArgs(nil)
	assert.Equal(t, map[string]any{}, s.Args)
}

func TestCurrentFrame(t *testing.T) {
	s := New("<svg>{{x}}</svg>", map[string]any{"x": "hi"})
	frame := s.CurrentFrame()
	assert.Equal(t, "<svg>hi</svg>", frame.Content)
	assert.WithinDuration(t, time.Now(), frame.Timestamp, time.Minute)

	// A template defect yields the raw template, never an empty frame.
	broken := New("<svg>{{missing}}</svg>", map[string]any{})
	assert.Equal(t, "<svg>{{missing}}</svg>", broken.CurrentFrame().Content)
}

func TestParseExpire(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"15m", 15 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"2d12h", 60 * time.Hour, false},
		{" 1d ", 24 * time.Hour, false},
		{"", 0, true},
		{"soon", 0, true},
		{"-5m", 0, true},
		{"1w", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpire(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(store.NewMemory())

	s := New("<svg>{{x}}</svg>", map[string]any{"x": "hi"})
	require.NoError(t, manager.Save(ctx, "demo", s, time.Hour))

	got, err := manager.Get(ctx, "demo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.Template, got.Template)
	assert.Equal(t, s.Args, got.Args)

	exists, err := manager.Exists(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, exists)

	absent, err := manager.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestManagerSavePublishesFrame(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	manager := NewManager(mem)

	sub, err := mem.Subscribe(ctx, "demo")
	require.NoError(t, err)
	defer sub.Close()

	s := New("<svg>{{x}}</svg>", map[string]any{"x": "hi"})
	require.NoError(t, manager.Save(ctx, "demo", s, time.Hour))

	select {
	case payload := <-sub.Channel():
		var frame Frame
		require.NoError(t, json.Unmarshal(payload, &frame))
		assert.Equal(t, "<svg>hi</svg>", frame.Content)
	case <-time.After(time.Second):
		t.Fatal("no frame published")
	}
}

func TestManagerListScopesPerUser(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(store.NewMemory())

	for _, id := range []string{"s1", "s2", "s3"} {
		s := NewOwned("<svg/>", nil, "alice")
		require.NoError(t, manager.Save(ctx, OwnedKey("alice", id), s, time.Hour))
	}
	other := NewOwned("<svg/>", nil, "bob")
	require.NoError(t, manager.Save(ctx, OwnedKey("bob", "s9"), other, time.Hour))

	// A public session must not leak into any user's listing.
	require.NoError(t, manager.Save(ctx, "plain", New("<svg/>", nil), time.Hour))

	ids, err := manager.List(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, ids)

	ids, err = manager.List(ctx, "bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s9"}, ids)
}
