package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/clientkind"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/session"
	"github.com/realtime-svg/realtime-svg/internal/stream"
)

// StreamHandler serves the multipart stream endpoints by composing
// client-kind detection, session lookup and the stream engine.
//
// The stream endpoints carry no bearer check even for owned sessions:
// browsers cannot attach Authorization headers to <img> sources, so the
// uid/sid pair is the capability. The redirect target for human clients
// is the session detail page.
type StreamHandler struct {
	sessions *session.Manager
	engine   *stream.Engine
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(sessions *session.Manager, engine *stream.Engine) *StreamHandler {
	return &StreamHandler{sessions: sessions, engine: engine}
}

// RegisterRoutes registers the public and owned stream routes. Both
// share the first path segment name - gin requires identical wildcard
// names at the same tree position.
func (h *StreamHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/stream/:id", h.StreamPublic)
	router.GET("/stream/:id/:sid", h.StreamOwned)
}

// StreamPublic handles GET /stream/:sid.
func (h *StreamHandler) StreamPublic(c *gin.Context) {
	sessionID := c.Param("id")
	h.serve(c, sessionID, session.PublicKey(sessionID), sessionID)
}

// StreamOwned handles GET /stream/:uid/:sid.
func (h *StreamHandler) StreamOwned(c *gin.Context) {
	userID := c.Param("id")
	sessionID := c.Param("sid")
	logger.Stream().Info().
		Str("user", userID).
		Str("session", sessionID).
		Msg("Owned stream access")
	h.serve(c, sessionID, session.OwnedKey(userID, sessionID), userID+":"+sessionID)
}

func (h *StreamHandler) serve(c *gin.Context, sessionID, key, logID string) {
	params := stream.ParamsFromQuery(c.Request.URL.Query())
	kind := clientkind.FromHeaders(c.Request.Header)
	engine := clientkind.EngineFromHeaders(c.Request.Header)

	// The admission decision needs no session load; a human browser is
	// redirected before any store round trip. The engine repeats this
	// check for callers that reach it directly.
	if kind == clientkind.Human && !params.AsBot {
		c.Redirect(http.StatusTemporaryRedirect, "/session/"+sessionID)
		return
	}

	s, err := h.sessions.Get(c.Request.Context(), key)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if s == nil {
		apierror.Respond(c, apierror.SessionNotFound(sessionID))
		return
	}

	req := stream.Request{
		LogID:        logID,
		RedirectPath: "/session/" + sessionID,
		Topic:        key,
		InitialFrame: s.CurrentFrame(),
	}
	if err := h.engine.Serve(c, params, kind, engine, req); err != nil {
		apierror.Respond(c, err)
	}
}
