package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/session"
)

// SessionHandler serves the public session endpoints. Public sessions
// have no owner: anyone may create, read, update and stream them.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a public session handler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes registers the public session routes.
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/session", h.Create)
	router.GET("/session/:sid", h.Get)
	router.PUT("/session/:sid", h.Update)
}

// CreateSessionRequest is the public create payload.
type CreateSessionRequest struct {
	SessionID string         `json:"session_id"`
	Template  string         `json:"template" binding:"required"`
	Args      map[string]any `json:"args"`
	Expire    string         `json:"expire"`
}

// UpdateSessionRequest replaces a session's argument map wholesale.
type UpdateSessionRequest struct {
	Args map[string]any `json:"args" binding:"required"`
}

// Create handles POST /api/session.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, apierror.InvalidRequest("invalid request body"))
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		apierror.Respond(c, apierror.InvalidSessionID())
		return
	}

	expire := req.Expire
	if expire == "" {
		expire = "1d"
	}
	ttl, err := session.ParseExpire(expire)
	if err != nil {
		apierror.Respond(c, apierror.Wrap(apierror.KindInvalidDuration, "invalid expire duration", err))
		return
	}

	key := session.PublicKey(sessionID)
	exists, err := h.sessions.Exists(c.Request.Context(), key)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if exists {
		apierror.Respond(c, apierror.SessionExists(sessionID))
		return
	}

	s := session.New(req.Template, req.Args)
	if err := h.sessions.Save(c.Request.Context(), key, s, ttl); err != nil {
		apierror.Respond(c, err)
		return
	}

	logger.HTTP().Info().Str("session", sessionID).Dur("ttl", ttl).Msg("Public session created")
	c.JSON(http.StatusCreated, SessionInfo{SessionID: sessionID})
}

// Get handles GET /api/session/:sid.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := c.Param("sid")
	s, err := h.sessions.Get(c.Request.Context(), session.PublicKey(sessionID))
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if s == nil {
		apierror.Respond(c, apierror.SessionNotFound(sessionID))
		return
	}
	c.JSON(http.StatusOK, detailOf(sessionID, s))
}

// Update handles PUT /api/session/:sid. The argument map is replaced
// wholesale and the refreshed frame is republished; the TTL resets to
// the fixed update window.
func (h *SessionHandler) Update(c *gin.Context) {
	sessionID := c.Param("sid")

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, apierror.InvalidRequest("invalid request body"))
		return
	}

	key := session.PublicKey(sessionID)
	s, err := h.sessions.Get(c.Request.Context(), key)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if s == nil {
		apierror.Respond(c, apierror.SessionNotFound(sessionID))
		return
	}

	s.ReplaceArgs(req.Args)
	if err := h.sessions.Save(c.Request.Context(), key, s, session.UpdateTTL); err != nil {
		apierror.Respond(c, err)
		return
	}

	logger.HTTP().Info().Str("session", sessionID).Msg("Public session updated")
	c.JSON(http.StatusOK, SessionInfo{SessionID: sessionID})
}
