// Package credentials manages the service's asymmetric key material and
// password salt, and issues and verifies the bearer tokens that guard
// owned sessions.
//
// Key material lives in the shared store so that every instance in the
// fleet signs and verifies with the same RSA-2048 pair:
//
//   - .realtime-svg:rsa:private_pem
//   - .realtime-svg:rsa:public_pem
//   - .realtime-svg:password_salt
//
// Bootstrap creates the material exactly once across the fleet via a
// set-if-absent race. Each process keeps a lazy in-memory cache of the
// parsed keys: the first caller blocks on one store round trip, later
// callers read the cached value. A failed load leaves the cache empty so
// the next caller retries.
package credentials

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"sync"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/store"
)

// Store keys for the fleet-shared credential material.
const (
	KeyPrivatePEM   = ".realtime-svg:rsa:private_pem"
	KeyPublicPEM    = ".realtime-svg:rsa:public_pem"
	KeyPasswordSalt = ".realtime-svg:password_salt"
)

const rsaKeyBits = 2048

// lazy is a load-once cache that retries after failure. The mutex blocks
// concurrent callers for the duration of the first load; once a load
// succeeds every later call is a cheap read.
type lazy[T any] struct {
	mu     sync.Mutex
	value  T
	loaded bool
}

func (l *lazy[T]) get(load func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.value, nil
	}
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = value
	l.loaded = true
	return value, nil
}

// Service issues and verifies tokens and hashes passwords against the
// fleet-shared material.
type Service struct {
	store store.Store

	signingKey lazy[*rsa.PrivateKey]
	verifyKey  lazy[*rsa.PublicKey]
	salt       lazy[[]byte]
}

// NewService creates a credential service over the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Bootstrap ensures the RSA key pair and password salt exist in the
// store. Safe to call from every instance at startup: the set-if-absent
// race guarantees exactly one writer fleet-wide, and losers observe the
// winner's values.
func Bootstrap(ctx context.Context, s store.Store) error {
	if err := bootstrapKeyPair(ctx, s); err != nil {
		return err
	}
	return bootstrapSalt(ctx, s)
}

func bootstrapKeyPair(ctx context.Context, s store.Store) error {
	exists, err := s.Exists(ctx, KeyPrivatePEM)
	if err != nil {
		return fmt.Errorf("failed to check key material: %w", err)
	}
	if exists {
		logger.Auth().Info().Msg("RSA keys already exist in store")
		return nil
	}

	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return fmt.Errorf("failed to generate RSA key: %w", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	})

	won, err := s.SetNX(ctx, KeyPrivatePEM, string(privatePEM), 0)
	if err != nil {
		return fmt.Errorf("failed to store private key: %w", err)
	}
	if won {
		if err := s.Set(ctx, KeyPublicPEM, string(publicPEM), 0); err != nil {
			return fmt.Errorf("failed to store public key: %w", err)
		}
		logger.Auth().Info().Msg("Created new RSA keys in store")
	} else {
		logger.Auth().Info().Msg("RSA keys were created by another instance")
	}
	return nil
}

func bootstrapSalt(ctx context.Context, s store.Store) error {
	exists, err := s.Exists(ctx, KeyPasswordSalt)
	if err != nil {
		return fmt.Errorf("failed to check password salt: %w", err)
	}
	if exists {
		logger.Auth().Info().Msg("Password salt already exists in store")
		return nil
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	salt := base64.RawStdEncoding.EncodeToString(raw)

	won, err := s.SetNX(ctx, KeyPasswordSalt, salt, 0)
	if err != nil {
		return fmt.Errorf("failed to store salt: %w", err)
	}
	if won {
		logger.Auth().Info().Msg("Created new password salt in store")
	} else {
		logger.Auth().Info().Msg("Password salt was created by another instance")
	}
	return nil
}

// SigningKey returns the cached RSA private key, loading it from the
// store on first use.
func (s *Service) SigningKey(ctx context.Context) (*rsa.PrivateKey, error) {
	return s.signingKey.get(func() (*rsa.PrivateKey, error) {
		raw, err := s.load(ctx, KeyPrivatePEM)
		if err != nil {
			return nil, err
		}
		key, err := parsePrivatePEM(raw)
		if err != nil {
			return nil, apierror.Wrap(apierror.KindInternal, "corrupt private key material", err)
		}
		return key, nil
	})
}

// VerifyKey returns the cached RSA public key, loading it from the store
// on first use.
func (s *Service) VerifyKey(ctx context.Context) (*rsa.PublicKey, error) {
	return s.verifyKey.get(func() (*rsa.PublicKey, error) {
		raw, err := s.load(ctx, KeyPublicPEM)
		if err != nil {
			return nil, err
		}
		key, err := parsePublicPEM(raw)
		if err != nil {
			return nil, apierror.Wrap(apierror.KindInternal, "corrupt public key material", err)
		}
		return key, nil
	})
}

// Salt returns the cached fleet-shared password salt.
func (s *Service) Salt(ctx context.Context) ([]byte, error) {
	return s.salt.get(func() ([]byte, error) {
		raw, err := s.load(ctx, KeyPasswordSalt)
		if err != nil {
			return nil, err
		}
		return []byte(raw), nil
	})
}

func (s *Service) load(ctx context.Context, key string) (string, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}
	if !found {
		return "", apierror.Newf(apierror.KindInternal, "credential material missing: %s", key)
	}
	return raw, nil
}

func parsePrivatePEM(raw string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, fmt.Errorf("no PEM block")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func parsePublicPEM(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, fmt.Errorf("no PEM block")
	}
	return x509.ParsePKCS1PublicKey(block.Bytes)
}
