package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/credentials"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/middleware"
	"github.com/realtime-svg/realtime-svg/internal/session"
)

// UserSessionHandler serves the owned session endpoints. Every route
// requires a bearer whose subject equals the path user id; the owned
// keyspace is disjoint from the public one and never falls back to it.
type UserSessionHandler struct {
	sessions *session.Manager
	creds    *credentials.Service
}

// NewUserSessionHandler creates an owned session handler.
func NewUserSessionHandler(sessions *session.Manager, creds *credentials.Service) *UserSessionHandler {
	return &UserSessionHandler{sessions: sessions, creds: creds}
}

// RegisterRoutes registers the owned session routes behind the bearer
// middleware.
func (h *UserSessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user/:uid")
	user.Use(middleware.RequireUser(h.creds))
	{
		user.POST("/session", h.Create)
		user.GET("/session", h.List)
		user.GET("/session/:sid", h.Get)
		user.PUT("/session/:sid", h.Update)
	}
}

// requireSubject enforces that the authenticated subject matches the path
// user id. The mismatch message names both sides, like every other
// Forbidden surface of the API.
func requireSubject(c *gin.Context, action string) (string, bool) {
	userID := c.Param("uid")
	subject, ok := middleware.AuthenticatedUser(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("missing authenticated subject"))
		return "", false
	}
	if subject != userID {
		logger.Auth().Warn().
			Str("subject", subject).
			Str("user", userID).
			Msgf("User attempted to %s sessions of another user", action)
		apierror.Respond(c, apierror.Forbidden(
			"user "+subject+" cannot "+action+" sessions of user "+userID))
		return "", false
	}
	return userID, true
}

// CreateUserSessionRequest is the owned create payload.
type CreateUserSessionRequest struct {
	SessionID  string         `json:"session_id"`
	Template   string         `json:"template" binding:"required"`
	Args       map[string]any `json:"args"`
	TTLSeconds uint64         `json:"ttl_seconds"`
}

// CreateUserSessionResponse echoes the created session's coordinates.
type CreateUserSessionResponse struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// Create handles POST /api/user/:uid/session.
func (h *UserSessionHandler) Create(c *gin.Context) {
	userID, ok := requireSubject(c, "create")
	if !ok {
		return
	}

	var req CreateUserSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, apierror.InvalidRequest("invalid request body"))
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		apierror.Respond(c, apierror.InvalidSessionID())
		return
	}

	ttl := session.UpdateTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	s := session.NewOwned(req.Template, req.Args, userID)
	if err := h.sessions.Save(c.Request.Context(), session.OwnedKey(userID, sessionID), s, ttl); err != nil {
		apierror.Respond(c, err)
		return
	}

	logger.HTTP().Info().
		Str("user", userID).
		Str("session", sessionID).
		Msg("Owned session created")
	c.JSON(http.StatusCreated, CreateUserSessionResponse{UserID: userID, SessionID: sessionID})
}

// List handles GET /api/user/:uid/session.
func (h *UserSessionHandler) List(c *gin.Context) {
	userID, ok := requireSubject(c, "list")
	if !ok {
		return
	}

	ids, err := h.sessions.List(c.Request.Context(), userID)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	items := make([]SessionInfo, 0, len(ids))
	for _, id := range ids {
		items = append(items, SessionInfo{SessionID: id})
	}
	c.JSON(http.StatusOK, ListResponse[SessionInfo]{Items: items})
}

// Get handles GET /api/user/:uid/session/:sid.
func (h *UserSessionHandler) Get(c *gin.Context) {
	userID, ok := requireSubject(c, "access")
	if !ok {
		return
	}
	sessionID := c.Param("sid")

	s, err := h.sessions.Get(c.Request.Context(), session.OwnedKey(userID, sessionID))
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

// Update handles PUT /api/user/:uid/session/:sid. Args are replaced
// wholesale, the TTL resets to the fixed server window, and the refreshed
// frame is republished.
func (h *UserSessionHandler) Update(c *gin.Context) {
	userID, ok := requireSubject(c, "modify")
	if !ok {
		return
	}
	sessionID := c.Param("sid")

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, apierror.InvalidRequest("invalid request body"))
		return
	}

	key := session.OwnedKey(userID, sessionID)
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

	logger.HTTP().Info().
		Str("user", userID).
		Str("session", sessionID).
		Msg("Owned session updated")
	c.Status(http.StatusNoContent)
}
