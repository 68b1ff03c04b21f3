package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ResponseKey generates a prefixed response key.
func (k *ScopedKeyer) ResponseKey(namespace, url string) string {
	return k.prefix + k.inner.ResponseKey(namespace, url)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(opts)
}
