package cache

// ScopedKeyer wraps a Keyer with a prefix so that tenants sharing one
// backend never see each other's entries.
//
// Example usage:
//
//	// Per-user keys on the shared Redis cache
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(designHash, opts)
}
