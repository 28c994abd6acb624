package source

import (
	"fmt"
	"strings"

	giturls "github.com/whilp/git-urls"

	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/integrations"
)

// Provider identifies a hosting provider.
type Provider string

const (
	GitHub Provider = "github"
	GitLab Provider = "gitlab"
)

// providerHosts maps recognised hostnames to providers.
var providerHosts = map[string]Provider{
	"github.com": GitHub,
	"gitlab.com": GitLab,
}

// Reference is the canonical identity of a repository: the unit of
// contributor fetching and caching. Owner and Repo are lowercase.
type Reference struct {
	Provider Provider `json:"provider"`
	Owner    string   `json:"owner"`
	Repo     string   `json:"repo"`
}

// String returns "provider:owner/repo".
func (r Reference) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Provider, r.Owner, r.Repo)
}

// Path returns "owner/repo".
func (r Reference) Path() string { return r.Owner + "/" + r.Repo }

// URL returns the repository's web address.
func (r Reference) URL() string {
	return fmt.Sprintf("https://%s.com/%s", r.Provider, r.Path())
}

// Less orders references by provider, owner, then repo.
func (r Reference) Less(o Reference) bool {
	if r.Provider != o.Provider {
		return r.Provider < o.Provider
	}
	if r.Owner != o.Owner {
		return r.Owner < o.Owner
	}
	return r.Repo < o.Repo
}

// ParseURL normalizes a repository URL into a Reference.
//
// Hosts other than github.com and gitlab.com fail with UNSUPPORTED_HOST;
// URLs without an owner and repository fail with REPO_UNRESOLVED.
func ParseURL(raw string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Reference{}, errors.New(errors.ErrCodeRepoUnresolved, "empty repository URL")
	}
	s = integrations.NormalizeRepoURL(s)
	if !strings.Contains(s, "://") && !strings.Contains(s, "@") {
		s = "https://" + s
	}

	u, err := giturls.Parse(s)
	if err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeRepoUnresolved, err, "parse repository URL %q", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	provider, ok := providerHosts[host]
	if !ok {
		if host == "" {
			return Reference{}, errors.New(errors.ErrCodeRepoUnresolved, "repository URL %q has no host", raw)
		}
		return Reference{}, errors.New(errors.ErrCodeUnsupportedHost, "unsupported repository host %q", host)
	}

	segments := repoSegments(provider, u.Path)
	if len(segments) < 2 {
		return Reference{}, errors.New(errors.ErrCodeRepoUnresolved, "repository URL %q does not name owner/repo", raw)
	}
	last := len(segments) - 1
	return Reference{
		Provider: provider,
		Owner:    strings.Join(segments[:last], "/"),
		Repo:     segments[last],
	}, nil
}

// repoSegments returns the lowercase path segments naming a repository,
// dropping web UI suffixes. GitHub keeps owner and repo only; GitLab keeps
// subgroups, with the UI path starting at "/-/".
func repoSegments(provider Provider, path string) []string {
	p := strings.ToLower(strings.Trim(path, "/"))
	if i := strings.Index(p, "/-/"); i >= 0 {
		p = p[:i]
	}

	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		if seg == "tree" || seg == "blob" {
			break
		}
		out = append(out, strings.TrimSuffix(seg, ".git"))
	}
	if provider == GitHub && len(out) > 2 {
		out = out[:2]
	}
	return out
}
