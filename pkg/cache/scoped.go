package cache

// ScopedKeyer wraps a Keyer with a prefix for isolation.
// The HTTP server scopes contributor lists fetched with a caller's own
// token so that data visible only to that token is never served to
// anonymous callers.
//
// Example usage:
//
//	// Keys for requests authenticated with a caller token
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "token:3f9a1c0d2b7e:")
//
//	// Global keys for public repositories
//	globalKeyer := NewDefaultKeyer()
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

// ContributorsKey generates a prefixed contributor-list key.
func (k *ScopedKeyer) ContributorsKey(provider, owner, repo string) string {
	return k.prefix + k.inner.ContributorsKey(provider, owner, repo)
}

// RegistryKey generates a prefixed registry lookup key.
func (k *ScopedKeyer) RegistryKey(registry, name string) string {
	return k.prefix + k.inner.RegistryKey(registry, name)
}

// TokenScope returns a keyer scope for requests made with token.
// An empty token yields the unscoped default keyer.
func TokenScope(inner Keyer, token string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if token == "" {
		return inner
	}
	return NewScopedKeyer(inner, "token:"+Hash([]byte(token))[:12]+":")
}
