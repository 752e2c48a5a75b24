// Package handlers provides the HTTP handlers for the realtime-svg API.
//
// Handlers compose the session manager, the credential service and the
// stream engine into the route surface:
//
//   - POST   /api/auth/token                   issue bearer
//   - GET    /.well-known/jwks.json            JWKS
//   - POST   /api/session                      create public session
//   - GET    /api/session/:sid                 get public session
//   - PUT    /api/session/:sid                 update public session
//   - GET    /stream/:sid                      stream public session
//   - POST   /api/user/:uid/session            create owned session
//   - GET    /api/user/:uid/session            list owned sessions
//   - GET    /api/user/:uid/session/:sid       get owned session
//   - PUT    /api/user/:uid/session/:sid       update owned session
//   - GET    /stream/:uid/:sid                 stream owned session
package handlers

import "github.com/realtime-svg/realtime-svg/internal/session"

// SessionInfo is the minimal session reference returned by writes.
type SessionInfo struct {
	SessionID string `json:"session_id"`
}

// SessionDetail is the full public view of a session.
type SessionDetail struct {
	SessionID string         `json:"session_id"`
	Template  string         `json:"template"`
	Args      map[string]any `json:"args"`
}

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

func detailOf(sessionID string, s *session.Session) SessionDetail {
	return SessionDetail{
		SessionID: sessionID,
		Template:  s.Template,
		Args:      s.Args,
	}
}
