// Package apierror defines the error taxonomy shared by all HTTP handlers.
//
// Every failure that reaches a client is one of the kinds below. Handlers
// return *Error values (or wrap causes into them) and render them through
// Respond, which maps the kind to an HTTP status and emits the uniform
// {"error": <message>} body. Internal details (store errors, key material)
// never leak into the message.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an API error for status mapping.
type Kind int

const (
	// KindInvalidRequest is a malformed or unbindable request body.
	KindInvalidRequest Kind = iota
	// KindInvalidSessionID is an empty or whitespace-only session id.
	KindInvalidSessionID
	// KindInvalidDuration is an unparseable expire duration.
	KindInvalidDuration
	// KindSessionExists is a duplicate session id on public create.
	KindSessionExists
	// KindSessionNotFound is a get/update/stream of an absent session.
	KindSessionNotFound
	// KindUnauthorized covers every bearer defect: absent, malformed,
	// expired, wrong issuer, bad signature.
	KindUnauthorized
	// KindForbidden is an authenticated subject that does not match the
	// path user id.
	KindForbidden
	// KindStoreFailure is a store or bus I/O error.
	KindStoreFailure
	// KindSerializationFailure is a frame or session JSON error.
	KindSerializationFailure
	// KindInternal is corrupt credential material or any unexpected failure.
	KindInternal
)

// Error is a classified API error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidRequest, KindInvalidSessionID, KindInvalidDuration:
		return http.StatusBadRequest
	case KindSessionExists:
		return http.StatusConflict
	case KindSessionNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a classified error. The cause is preserved for
// logging and errors.Is/As but never rendered to the client.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// InvalidRequest reports a request body that failed binding.
func InvalidRequest(message string) *Error {
	return New(KindInvalidRequest, message)
}

// InvalidSessionID is the canonical empty-session-id error.
func InvalidSessionID() *Error {
	return New(KindInvalidSessionID, "session id cannot be empty")
}

// SessionExists reports a duplicate session id.
func SessionExists(sessionID string) *Error {
	return Newf(KindSessionExists, "session already exists: %s", sessionID)
}

// SessionNotFound reports an absent session.
func SessionNotFound(sessionID string) *Error {
	return Newf(KindSessionNotFound, "session not found: %s", sessionID)
}

// Unauthorized reports a bearer defect with a client-safe reason.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// Forbidden reports a subject/path mismatch.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Respond renders err as the uniform error body. Non-*Error values are
// treated as internal failures with a generic message so that unexpected
// errors never leak internals.
func Respond(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Wrap(KindInternal, "internal server error", err)
	}
	c.AbortWithStatusJSON(apiErr.Status(), gin.H{"error": apiErr.Message})
}
