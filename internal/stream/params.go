package stream

import (
	"net/url"
	"strconv"
	"time"
)

// DefaultKeepAlive is the keep-alive interval when the query carries no
// override.
const DefaultKeepAlive = 30000 * time.Millisecond

// Params are the stream tuning knobs a client may pass in the query
// string. Durations arrive as milliseconds.
type Params struct {
	// DoubleFrame forces the double-frame workaround on or off. Nil means
	// "decide from the detected browser engine".
	DoubleFrame *bool

	// AsBot suppresses the human redirect and serves the raw stream.
	AsBot bool

	// KeepAlive is the interval at which the last frame is re-emitted.
	KeepAlive time.Duration

	// DelayedStart postpones the driver loop after the initial frame.
	DelayedStart time.Duration
}

// ParamsFromQuery parses double_frame, as_bot, keep_alive and
// delayed_start. Unparseable values fall back to their defaults; the
// stream endpoint never rejects a request over a tuning knob.
func ParamsFromQuery(query url.Values) Params {
	p := Params{
		KeepAlive:    DefaultKeepAlive,
		DelayedStart: 0,
	}

	if raw := query.Get("double_frame"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			p.DoubleFrame = &v
		}
	}
	if raw := query.Get("as_bot"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			p.AsBot = v
		}
	}
	if raw := query.Get("keep_alive"); raw != "" {
		if ms, err := strconv.ParseUint(raw, 10, 32); err == nil && ms > 0 {
			p.KeepAlive = time.Duration(ms) * time.Millisecond
		}
	}
	if raw := query.Get("delayed_start"); raw != "" {
		if ms, err := strconv.ParseUint(raw, 10, 32); err == nil {
			p.DelayedStart = time.Duration(ms) * time.Millisecond
		}
	}
	return p
}
