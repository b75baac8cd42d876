package commands

import "time"

// parseExpiresAt parses the RFC3339 expires_at string returned by the
// login endpoint. Failures are tolerated by the caller: a context with a
// zero ExpiresAt is simply always treated as expired.
func parseExpiresAt(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
