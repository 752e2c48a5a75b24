// Package session defines the session data model, the key layout in the
// shared store, and the Manager that reads and writes sessions.
//
// A session is the unit of streaming and of access control: a textual SVG
// template plus a mutable argument map, optionally owned by a user. Frames
// are derived - rendered on every mutation and on every stream join, never
// stored as authoritative state.
package session

import (
	"time"

	"github.com/realtime-svg/realtime-svg/internal/render"
)

// Session is a stored session record. Owner is empty for public sessions
// and equal to the authenticated subject for owned sessions; once set it
// never changes and is the sole field consulted for authorization.
type Session struct {
	Template string         `json:"template"`
	Args     map[string]any `json:"args"`
	Owner    string         `json:"owner,omitempty"`
}

// Frame is one rendered SVG broadcast on the session's topic. The
// timestamp is advisory (logging only) and never drives ordering.
type Frame struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a public session.
func New(template string, args map[string]any) *Session {
	if args == nil {
		args = map[string]any{}
	}
	return &Session{Template: template, Args: args}
}

// NewOwned creates a session owned by the given subject.
func NewOwned(template string, args map[string]any, owner string) *Session {
	s := New(template, args)
	s.Owner = owner
	return s
}

// ReplaceArgs swaps the argument map wholesale; updates never merge.
func (s *Session) ReplaceArgs(args map[string]any) {
	if args == nil {
		args = map[string]any{}
	}
	s.Args = args
}

// CurrentFrame renders the session's template against its current args.
// Rendering cannot fail: on any template defect the raw template is the
// frame content.
func (s *Session) CurrentFrame() Frame {
	content, _ := render.Render(s.Template, s.Args)
	return Frame{Content: content, Timestamp: time.Now().UTC()}
}
