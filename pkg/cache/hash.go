package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Use full SHA-256 hash (64 hex chars / 256 bits) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SweepKey generates a key for a cached sweep result.
func (k *DefaultKeyer) SweepKey(inputHash string) string {
	return hashKey("sweep", inputHash)
}

// SolveKey generates a key for a solved solution, folding in every
// SolverParams field that can change the outcome.
func (k *DefaultKeyer) SolveKey(inputHash string, opts SolveKeyOpts) string {
	return hashKey("solve", inputHash, opts)
}

// IISKey generates a key for a computed irreducible infeasible subset.
func (k *DefaultKeyer) IISKey(inputHash string, opts SolveKeyOpts) string {
	return hashKey("iis", inputHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
