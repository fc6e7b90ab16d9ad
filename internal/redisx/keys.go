package redisx

import "time"

const (
	// Logged-out token: revoked:{jti} -> "1", expires with the token.
	KeyRevokedToken = "revoked:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Search term popularity: sorted set, member = lower-cased term.
	KeyPopularTerms = "search:popular"
)

var TTLDedup = 48 * time.Hour
