// Package cache provides pluggable byte caches for the outer layers of
// DiagramSmith.
//
// The pipeline core keeps all state in-memory per request; caching lives in
// the CLI and HTTP server, which reuse expensive artifacts across requests:
// content analyses keyed by content hash, and rendered PNGs keyed by SVG
// hash. Three backends are provided: file (CLI default), Redis (server),
// and null (disabled).
package cache

import (
	"context"
	"time"
)

// TTLs for the cached artifact classes.
const (
	// TTLAnalysis is how long a content analysis stays valid. Content
	// rarely changes meaning, but models do; a day is plenty.
	TTLAnalysis = 24 * time.Hour

	// TTLRender is how long a rendered PNG stays valid. Renders are
	// deterministic for identical inputs, so this is effectively an
	// eviction knob, not a correctness one.
	TTLRender = 7 * 24 * time.Hour
)

// Cache stores binary values with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
