package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// cratesPackageNameRegex matches valid crates.io package names.
var cratesPackageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// ValidateCrateName validates a crates.io package name before it is
// interpolated into a registry URL.
func ValidateCrateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "crate name cannot be empty")
	}
	if !cratesPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid crates.io package name: %q", name)
	}
	return nil
}

// ValidateManifestPath validates a user-supplied manifest path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateManifestPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidManifest, "manifest path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidManifest, "manifest path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "manifest path contains invalid characters")
		}
	}
	return nil
}

// ValidateSourceURL validates an extra source repository reference.
// Accepted forms are http(s) URLs and scp-like git@host:owner/repo.
func ValidateSourceURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "source URL cannot be empty")
	}
	for _, r := range rawURL {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "source URL contains invalid characters: %q", rawURL)
		}
	}

	switch {
	case strings.HasPrefix(rawURL, "https://"),
		strings.HasPrefix(rawURL, "http://"),
		strings.HasPrefix(rawURL, "git@"),
		strings.HasPrefix(rawURL, "git+https://"),
		strings.HasPrefix(rawURL, "ssh://"):
		return nil
	}
	return New(ErrCodeInvalidInput, "source URL must use https, ssh or git@ form: %q", rawURL)
}
