package cache

import "time"

// ArtifactKeyOpts are the render options that affect an artifact's bytes.
type ArtifactKeyOpts struct {
	View       string  `json:"view"`
	Format     string  `json:"format"`
	Scale      float64 `json:"scale,omitempty"`
	Labels     bool    `json:"labels,omitempty"`
	Containers bool    `json:"containers,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Properties bool    `json:"properties,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the model
	// with the given content hash.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the model hash together with the options.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// callers that share one backend (for example the CLI and the HTTP server
// sharing a Redis instance).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}

// TTL for cached artifacts. Keys change whenever the model or the render
// options change, so entries never go stale; the TTL only bounds growth.
const TTLArtifact = 7 * 24 * time.Hour
