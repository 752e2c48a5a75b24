package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPublicTTL is the TTL applied to a public create when the request
// carries no expire field.
const DefaultPublicTTL = 24 * time.Hour

// UpdateTTL is the fixed refresh window applied on every update and on
// owned creates without an explicit ttl_seconds.
const UpdateTTL = time.Hour

// ParseExpire parses a human-readable duration such as "90s", "15m",
// "1d" or "2d12h". It accepts everything time.ParseDuration does, plus a
// leading day component.
func ParseExpire(expire string) (time.Duration, error) {
	s := strings.TrimSpace(expire)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var days time.Duration
	if i := strings.IndexByte(s, 'd'); i >= 0 && !strings.ContainsAny(s[:i], "hmsun") {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", expire)
		}
		days = time.Duration(n) * 24 * time.Hour
		s = s[i+1:]
		if s == "" {
			return days, nil
		}
	}

	rest, err := time.ParseDuration(s)
	if err != nil || rest < 0 {
		return 0, fmt.Errorf("invalid duration %q", expire)
	}
	return days + rest, nil
}
