package credentials

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/realtime-svg/realtime-svg/internal/apierror"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/session"
)

// Argon2id parameters. The shared salt means equal passwords hash
// equally across the fleet, which is what makes the stored hash
// verifiable by any instance.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// UserRecord is the stored credential record at user:<user_id>:data.
type UserRecord struct {
	PasswordArgon2 string `json:"password_argon2"`
}

// HashPassword derives an Argon2id hash of password under the
// fleet-shared salt, encoded in PHC string format.
func (s *Service) HashPassword(ctx context.Context, password string) (string, error) {
	salt, err := s.Salt(ctx)
	if err != nil {
		return "", err
	}
	digest := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword reports whether password matches an encoded hash
// produced by HashPassword.
func (s *Service) VerifyPassword(ctx context.Context, password, encoded string) (bool, error) {
	computed, err := s.HashPassword(ctx, password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1, nil
}

// CheckUserPassword enforces the password contract for token issuance:
// an unknown user registers the supplied password, a known user must
// present a matching one. Mismatches surface as Unauthorized.
func (s *Service) CheckUserPassword(ctx context.Context, userID, password string) error {
	key := session.UserRecordKey(userID)
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return apierror.Wrap(apierror.KindStoreFailure, "store error", err)
	}

	if !found {
		hash, err := s.HashPassword(ctx, password)
		if err != nil {
			return err
		}
		record, err := json.Marshal(UserRecord{PasswordArgon2: hash})
		if err != nil {
			return apierror.Wrap(apierror.KindSerializationFailure, "failed to encode user record", err)
		}
		if err := s.store.Set(ctx, key, string(record), 0); err != nil {
			return apierror.Wrap(apierror.KindStoreFailure, "store error", err)
		}
		logger.Auth().Info().Str("user", userID).Msg("Registered user credential record")
		return nil
	}

	var record UserRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return apierror.Wrap(apierror.KindSerializationFailure, "corrupt user record", err)
	}
	ok, err := s.VerifyPassword(ctx, password, record.PasswordArgon2)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.Unauthorized("invalid credentials")
	}
	return nil
}
