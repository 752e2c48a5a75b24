package session

import (
	"fmt"
	"strings"
)

// Key layout in the shared store. A session and its pub/sub topic share a
// name, so these helpers produce both. The owned keyspace is disjoint
// from the public one by construction: owned keys always carry the user
// prefix and no lookup ever falls back across the two.
const (
	ownedKeyFormat    = "user:%s:session:%s"
	ownedScanFormat   = "user:%s:session:*"
	userRecordFormat  = "user:%s:data"
	ownedPrefixFormat = "user:%s:session:"
)

// PublicKey returns the store key (and topic) for a public session.
func PublicKey(sessionID string) string {
	return sessionID
}

// OwnedKey returns the store key (and topic) for an owned session.
func OwnedKey(userID, sessionID string) string {
	return fmt.Sprintf(ownedKeyFormat, userID, sessionID)
}

// OwnedPattern returns the scan pattern matching every session of a user.
func OwnedPattern(userID string) string {
	return fmt.Sprintf(ownedScanFormat, userID)
}

// TrimOwnedPrefix recovers the bare session id from an owned store key.
// The second result is false when the key does not belong to the user.
func TrimOwnedPrefix(userID, key string) (string, bool) {
	prefix := fmt.Sprintf(ownedPrefixFormat, userID)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}

// UserRecordKey returns the store key of a user's credential record.
func UserRecordKey(userID string) string {
	return fmt.Sprintf(userRecordFormat, userID)
}
