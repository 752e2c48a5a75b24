// Package stream implements the per-connection multipart stream engine.
//
// A stream request resolves to one of two outcomes: a temporary redirect
// (human browsers land on the session detail page instead of raw
// multipart bytes) or an open multipart/x-mixed-replace response backed
// by a background driver goroutine.
//
// The driver owns the bus subscription, a bounded channel to the response
// writer, and a keep-alive timer. It merges bus frames and keep-alive
// ticks into the writer channel in arrival order; the connection
// goroutine drains that channel and writes one encoded part (or two, when
// the double-frame workaround is active) per emission.
//
// The subscription is opened before any response byte is written and the
// initial frame is emitted synchronously right after. Together these
// cover the store's non-atomic set-then-publish: a joiner can never
// observe an empty stream even if it raced a concurrent update.
//
// Back-pressure policy: the writer channel holds at most 16 pending
// frames. Enqueue never blocks - a slow consumer that fills the channel
// terminates its own driver, and nothing else. Termination is silent: no
// shutdown frame, subscription released, channel closed.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/clientkind"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/session"
	"github.com/realtime-svg/realtime-svg/internal/store"
)

// writerBuffer bounds the per-connection channel between the driver and
// the response writer.
const writerBuffer = 16

// Request carries everything the engine needs for one connection.
type Request struct {
	// LogID identifies the session in log lines (uid:sid for owned
	// sessions, sid for public ones).
	LogID string

	// RedirectPath is the human-facing detail page; the engine never
	// infers it.
	RedirectPath string

	// Topic is the bus topic to subscribe to (equal to the store key).
	Topic string

	// InitialFrame is the session's current frame, rendered by the
	// caller. It is always the first part the client observes.
	InitialFrame session.Frame
}

// Engine serves multipart streams over a shared store.
type Engine struct {
	store store.Store
}

// NewEngine creates a stream engine over the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Serve drives one stream connection to completion. Errors are only
// returned before any response byte is written; once streaming begins,
// failures terminate the connection silently.
func (e *Engine) Serve(c *gin.Context, params Params, kind clientkind.Kind, engine clientkind.Engine, req Request) error {
	if kind == clientkind.Human && !params.AsBot {
		c.Redirect(http.StatusTemporaryRedirect, req.RedirectPath)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before the first byte: everything published after this
	// point reaches the driver, and the initial frame covers everything
	// before it.
	sub, err := e.store.Subscribe(ctx, req.Topic)
	if err != nil {
		return apierror.Wrap(apierror.KindStoreFailure, "failed to subscribe", err)
	}

	double := engine.DoubleFrame()
	if params.DoubleFrame != nil {
		double = *params.DoubleFrame
	}

	log := logger.Stream().With().
		Str("session", req.LogID).
		Bool("double_frame", double).
		Logger()
	log.Info().
		Str("client_kind", kind.String()).
		Str("engine", engine.String()).
		Msg("Stream connected")

	w := c.Writer
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	frames := make(chan session.Frame, writerBuffer)
	go e.drive(ctx, sub, frames, params, req.InitialFrame, log)

	if _, err := w.Write(BoundaryOpener()); err != nil {
		return nil
	}
	if _, err := w.Write(EncodeEmission(req.InitialFrame, double)); err != nil {
		return nil
	}
	w.Flush()

	for frame := range frames {
		if _, err := w.Write(EncodeEmission(frame, double)); err != nil {
			log.Debug().Err(err).Msg("Writer disconnected")
			return nil
		}
		w.Flush()
	}
	log.Info().Msg("Stream ended")
	return nil
}

// drive is the background driver: it merges bus messages and keep-alive
// ticks into the writer channel until any termination condition fires.
func (e *Engine) drive(ctx context.Context, sub store.Subscription, frames chan<- session.Frame, params Params, initial session.Frame, log zerolog.Logger) {
	defer close(frames)
	defer sub.Close()

	if params.DelayedStart > 0 {
		select {
		case <-time.After(params.DelayedStart):
		case <-ctx.Done():
			return
		}
	}

	interval := params.KeepAlive
	if interval <= 0 {
		interval = DefaultKeepAlive
	}

	last := initial
	keepAlive := time.NewTicker(interval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case payload, ok := <-sub.Channel():
			if !ok {
				log.Debug().Msg("Bus stream ended")
				return
			}
			var frame session.Frame
			if err := json.Unmarshal(payload, &frame); err != nil {
				log.Error().Err(err).Msg("Failed to decode frame payload")
				continue
			}
			last = frame
			if !enqueue(frames, frame) {
				log.Debug().Msg("Writer channel full, dropping subscriber")
				return
			}

		case <-keepAlive.C:
			log.Debug().Time("frame_ts", last.Timestamp).Msg("Keep-alive frame re-sent")
			if !enqueue(frames, last) {
				log.Debug().Msg("Writer channel full, dropping subscriber")
				return
			}
		}
	}
}

// enqueue attempts a non-blocking send. A full channel means the consumer
// is too slow; the driver must terminate rather than block or buffer.
func enqueue(frames chan<- session.Frame, frame session.Frame) bool {
	select {
	case frames <- frame:
		return true
	default:
		return false
	}
}
