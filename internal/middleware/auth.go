package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/credentials"
	"github.com/realtime-svg/realtime-svg/internal/logger"
)

// RequireUser extracts and verifies the bearer token and stores the
// authenticated subject under ContextUserID. Any defect - absent header,
// wrong scheme, bad signature, expiry, wrong issuer - aborts with a
// single Unauthorized outcome.
func RequireUser(creds *credentials.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Auth().Warn().Msg("Unauthorized: missing Authorization header")
			apierror.Respond(c, apierror.Unauthorized("missing Authorization header"))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			logger.Auth().Warn().Msg("Unauthorized: invalid Authorization format")
			apierror.Respond(c, apierror.Unauthorized("invalid Authorization format"))
			return
		}

		subject, err := creds.VerifyToken(c.Request.Context(), token)
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		c.Set(ContextUserID, subject)
		c.Next()
	}
}

// AuthenticatedUser returns the subject stored by RequireUser. The second
// result is false on routes that never passed through the middleware.
func AuthenticatedUser(c *gin.Context) (string, bool) {
	subject, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	s, ok := subject.(string)
	return s, ok
}
