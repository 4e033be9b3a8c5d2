package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys for the artifact classes DiagramSmith caches.
type Keyer interface {
	// AnalysisKey keys a content analysis by content hash and model name.
	AnalysisKey(contentHash, model string) string

	// RenderKey keys a rendered PNG by SVG hash and render parameters.
	RenderKey(svgHash string, dpi int, background string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// AnalysisKey implements Keyer.
func (k *DefaultKeyer) AnalysisKey(contentHash, model string) string {
	return hashKey("analysis", contentHash, model)
}

// RenderKey implements Keyer.
func (k *DefaultKeyer) RenderKey(svgHash string, dpi int, background string) string {
	return hashKey("render", svgHash, dpi, background)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation,
// useful when one Redis instance serves several deployments.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AnalysisKey implements Keyer.
func (k *ScopedKeyer) AnalysisKey(contentHash, model string) string {
	return k.prefix + k.inner.AnalysisKey(contentHash, model)
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(svgHash string, dpi int, background string) string {
	return k.prefix + k.inner.RenderKey(svgHash, dpi, background)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
