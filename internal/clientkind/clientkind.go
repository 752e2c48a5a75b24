// Package clientkind classifies stream clients from request headers.
//
// Two independent classifications feed the stream engine's decisions:
// the client kind (human browsers get redirected to the session detail
// page, bots get the raw multipart stream) and the browser engine family
// (Blink needs the double-frame workaround). Both are header-based by
// design - no user-agent sniffing.
package clientkind

import (
	"net/http"
	"strings"
)

// Kind is the inferred nature of a stream client.
type Kind int

const (
	Unknown Kind = iota
	Human
	Bot
)

func (k Kind) String() string {
	switch k {
	case Human:
		return "human"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// FromHeaders infers the client kind with a fixed precedence:
//
//  1. Sec-Fetch-Mode: navigate => Human, no-cors => Bot
//  2. Sec-Fetch-Dest: image => Bot, document => Human
//  3. Accept containing text/html => Human, containing image/ => Bot
//  4. otherwise Unknown
func FromHeaders(h http.Header) Kind {
	switch h.Get("Sec-Fetch-Mode") {
	case "navigate":
		return Human
	case "no-cors":
		return Bot
	}

	switch h.Get("Sec-Fetch-Dest") {
	case "image":
		return Bot
	case "document":
		return Human
	}

	accept := h.Get("Accept")
	if strings.Contains(accept, "text/html") {
		return Human
	}
	if strings.Contains(accept, "image/") {
		return Bot
	}
	return Unknown
}
