package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so that
// e.g. the HTTP API can give each submitted problem its own cache namespace
// without changing the underlying key derivation.
//
// Example usage:
//
//	reqKeyer := NewScopedKeyer(NewDefaultKeyer(), "req:abc123:")
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

// SweepKey generates a prefixed key for a cached sweep result.
func (k *ScopedKeyer) SweepKey(inputHash string) string {
	return k.prefix + k.inner.SweepKey(inputHash)
}

// SolveKey generates a prefixed key for a solved solution.
func (k *ScopedKeyer) SolveKey(inputHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(inputHash, opts)
}

// IISKey generates a prefixed key for a computed irreducible infeasible subset.
func (k *ScopedKeyer) IISKey(inputHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.IISKey(inputHash, opts)
}
