package contrib

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/integrations/github"
	"github.com/matzehuels/acknowledge/pkg/integrations/gitlab"
	"github.com/matzehuels/acknowledge/pkg/source"
)

// Provider fetches contributor pages from one hosting provider.
type Provider interface {
	// Name is the provider this adapter serves.
	Name() source.Provider

	// FetchPage returns one page of contributors. Pages start at 1; next is
	// the following page, or 0 after the last one.
	FetchPage(ctx context.Context, ref source.Reference, page int) (records []Record, next int, err error)

	// RateLimited reports whether err is a rate-limit refusal and how long
	// the provider asked to wait. A zero wait means no hint was given.
	RateLimited(err error) (wait time.Duration, ok bool)
}

// GitHub adapts the GitHub REST client.
type GitHub struct {
	Client *github.Client
}

// NewGitHub creates a GitHub provider. An empty token makes anonymous
// requests.
func NewGitHub(token string) *GitHub {
	return &GitHub{Client: github.NewClient(token)}
}

func (*GitHub) Name() source.Provider { return source.GitHub }

func (p *GitHub) FetchPage(ctx context.Context, ref source.Reference, page int) ([]Record, int, error) {
	list, next, err := p.Client.Contributors(ctx, ref.Owner, ref.Repo, page)
	if err != nil {
		return nil, 0, err
	}
	return fromContributors(list), next, nil
}

func (*GitHub) RateLimited(err error) (time.Duration, bool) { return rateLimited(err) }

// GitLab adapts the GitLab REST client.
type GitLab struct {
	Client *gitlab.Client
}

// NewGitLab creates a GitLab provider. An empty token makes anonymous
// requests.
func NewGitLab(token string) *GitLab {
	return &GitLab{Client: gitlab.NewClient(token)}
}

func (*GitLab) Name() source.Provider { return source.GitLab }

func (p *GitLab) FetchPage(ctx context.Context, ref source.Reference, page int) ([]Record, int, error) {
	list, next, err := p.Client.Contributors(ctx, ref.Owner, ref.Repo, page)
	if err != nil {
		return nil, 0, err
	}
	return fromContributors(list), next, nil
}

func (*GitLab) RateLimited(err error) (time.Duration, bool) { return rateLimited(err) }

// rateLimited recognises the errors both clients produce for quota
// refusals.
func rateLimited(err error) (time.Duration, bool) {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

var (
	_ Provider = (*GitHub)(nil)
	_ Provider = (*GitLab)(nil)
)
