package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer derives cache keys from request identity.
type Keyer interface {
	// ContributorsKey keys a repository's full contributor list.
	ContributorsKey(provider, owner, repo string) string
	// RegistryKey keys a registry lookup for a package name.
	RegistryKey(registry, name string) string
}

// DefaultKeyer produces readable, unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ContributorsKey returns "contributors:<provider>:<owner>/<repo>".
func (DefaultKeyer) ContributorsKey(provider, owner, repo string) string {
	return "contributors:" + provider + ":" + strings.ToLower(owner+"/"+repo)
}

// RegistryKey returns "registry:<registry>:<name>".
func (DefaultKeyer) RegistryKey(registry, name string) string {
	return "registry:" + registry + ":" + name
}
