package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/credentials"
)

// AuthHandler issues bearer tokens and serves the JWKS view of the
// public key.
//
// Token issuance is public by default: the service acts as a JWKS
// provider, not an identity authority. With requirePassword enabled,
// issuance turns strict: the first request for a user registers the
// supplied password, every later one must present a matching password.
type AuthHandler struct {
	creds           *credentials.Service
	requirePassword bool
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(creds *credentials.Service, requirePassword bool) *AuthHandler {
	return &AuthHandler{creds: creds, requirePassword: requirePassword}
}

// RegisterRoutes registers the token and JWKS routes.
func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/token", h.IssueToken)
	router.GET("/.well-known/jwks.json", h.JWKS)
}

// TokenRequest is the token issuance payload.
type TokenRequest struct {
	UserID     string `json:"user_id"`
	Password   string `json:"password"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// TokenResponse carries the signed compact token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /api/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, apierror.InvalidRequest("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierror.Respond(c, apierror.Unauthorized("user_id cannot be empty"))
		return
	}

	if h.requirePassword && req.Password == "" {
		apierror.Respond(c, apierror.Unauthorized("password required"))
		return
	}
	if req.Password != "" {
		if err := h.creds.CheckUserPassword(c.Request.Context(), req.UserID, req.Password); err != nil {
			apierror.Respond(c, err)
			return
		}
	}

	token, err := h.creds.IssueToken(c.Request.Context(), req.UserID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// JWKS handles GET /.well-known/jwks.json.
func (h *AuthHandler) JWKS(c *gin.Context) {
	keys, err := h.creds.JWKS(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, keys)
}
