package credentials

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/logger"
)

// Issuer is the iss claim stamped into and required from every token.
const Issuer = "realtime-svg"

// DefaultTokenTTL applies when issuance requests no explicit lifetime.
const DefaultTokenTTL = 24 * time.Hour

// verifyLeeway absorbs small clock skew between instances when checking
// exp. The iat claim is not checked on verification.
const verifyLeeway = 60 * time.Second

// IssueToken signs a compact RS256 token with claims
// {sub, iat, exp, iss}. A non-positive ttl falls back to DefaultTokenTTL.
func (s *Service) IssueToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	key, err := s.SigningKey(ctx)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", apierror.Wrap(apierror.KindInternal, "failed to sign token", err)
	}

	logger.Auth().Info().Str("sub", subject).Msg("Issued bearer token")
	return token, nil
}

// VerifyToken validates a compact token and returns its subject. The
// signature must be RS256 under the fleet key, the issuer must match,
// and exp must be in the future (with leeway). Every defect collapses
// into a single Unauthorized outcome.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	key, err := s.VerifyKey(ctx)
	if err != nil {
		return "", err
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(verifyLeeway),
	)
	if err != nil {
		logger.Auth().Warn().Err(err).Msg("Token verification failed")
		return "", apierror.Unauthorized("invalid bearer token")
	}
	return claims.Subject, nil
}
