package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a crate or repository doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Contributor is one entry of a hosting provider's contributor list.
type Contributor struct {
	Login         string `json:"login"`                 // GitHub username, or GitLab commit author name
	ProfileURL    string `json:"profile_url,omitempty"` // Empty when the provider has no account link
	Contributions int    `json:"contributions"`         // Number of commits
	Bot           bool   `json:"bot,omitempty"`         // Provider marked the account as automated
}

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git@gitlab.com:", "https://gitlab.com/",
	"git://gitlab.com/", "https://gitlab.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes trailing slashes and
// .git suffixes. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	s = strings.TrimRight(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// PathEscape percent-encodes a string for use as one path segment, so
// "group/project" becomes "group%2Fproject".
func PathEscape(s string) string { return url.PathEscape(s) }
