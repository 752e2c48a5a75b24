package credentials

import (
	"context"
	"encoding/base64"
	"math/big"
)

// JWK is the public half of the signing key in JSON Web Key form.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the key set served at /.well-known/jwks.json.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS returns the current public key as a single-entry key set, with the
// modulus and exponent base64url-encoded without padding.
func (s *Service) JWKS(ctx context.Context) (*JWKS, error) {
	key, err := s.VerifyKey(ctx)
	if err != nil {
		return nil, err
	}

	n := base64.RawURLEncoding.EncodeToString(key.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())

	return &JWKS{Keys: []JWK{{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		N:   n,
		E:   e,
	}}}, nil
}
