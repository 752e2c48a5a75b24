// Package middleware provides the gin middleware shared by all routes:
// bearer authentication, request logging, and request size limiting.
package middleware

// ContextUserID is the gin context key under which RequireUser stores the
// authenticated subject.
const ContextUserID = "userID"

// MaxJSONPayloadSize caps request bodies on the JSON API surface. Session
// templates are text; anything near this limit is not a legitimate
// request.
const MaxJSONPayloadSize int64 = 1 * 1024 * 1024 // 1 MiB
