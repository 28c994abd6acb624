package github

import (
	"regexp"

	"github.com/matzehuels/acknowledge/pkg/errors"
)

var (
	// Logins are up to 39 alphanumerics or hyphens and never start with a hyphen.
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateRepoRef rejects owner/repo pairs that cannot name a GitHub
// repository, so no request is spent on them.
func ValidateRepoRef(owner, repo string) error {
	if !ownerPattern.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid GitHub owner %q", owner)
	}
	if repo == "." || repo == ".." || !repoPattern.MatchString(repo) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid GitHub repository %q", repo)
	}
	return nil
}
