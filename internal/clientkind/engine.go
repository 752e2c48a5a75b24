package clientkind

import (
	"net/http"
	"strings"
)

// Engine is the browser engine family advertised in Sec-CH-UA.
type Engine int

const (
	EngineUnknown Engine = iota
	EngineBlink
	EngineWebKit
	EngineGecko
)

func (e Engine) String() string {
	switch e {
	case EngineBlink:
		return "blink"
	case EngineWebKit:
		return "webkit"
	case EngineGecko:
		return "gecko"
	default:
		return "unknown"
	}
}

// EngineFromHeaders detects the engine family from the Sec-CH-UA client
// hint. Chromium brands must be checked before Safari: Blink UAs also
// advertise Safari compatibility.
func EngineFromHeaders(h http.Header) Engine {
	ua := strings.ToLower(h.Get("Sec-CH-UA"))
	if ua == "" {
		return EngineUnknown
	}
	switch {
	case strings.Contains(ua, "chromium") || strings.Contains(ua, "chrome"):
		return EngineBlink
	case strings.Contains(ua, "gecko"):
		return EngineGecko
	case strings.Contains(ua, "safari"):
		return EngineWebKit
	default:
		return EngineUnknown
	}
}

// DoubleFrame reports whether this engine needs every multipart part
// written twice. Blink coalesces consecutive parts and would otherwise
// withhold the first real update from display.
func (e Engine) DoubleFrame() bool {
	return e == EngineBlink
}
