package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"

	"github.com/matzehuels/acknowledge/pkg/buildinfo"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/httputil"
	"github.com/matzehuels/acknowledge/pkg/integrations"
)

// PageSize is the number of contributors requested per page, the API maximum.
const PageSize = 100

// Client lists repository contributors through the GitHub REST API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	gh  *gh.Client
	now func() time.Time
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests, which
// GitHub limits to 60 requests per hour.
func NewClient(token string) *Client {
	c := gh.NewClient(integrations.NewHTTPClient())
	if token != "" {
		c = c.WithAuthToken(token)
	}
	c.UserAgent = buildinfo.UserAgent()
	return &Client{gh: c, now: time.Now}
}

// SetBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse github base url: %w", err)
	}
	c.gh.BaseURL = u
	return nil
}

// Contributors fetches one page of a repository's contributors, most
// active first. next is the following page number, or 0 on the last page.
//
// Errors follow the integrations taxonomy: [integrations.ErrNotFound] for a
// missing repository, UNAUTHORIZED for a rejected token, and retryable
// errors for rate limits (carrying the reset hint), 5xx and transport
// failures.
func (c *Client) Contributors(ctx context.Context, owner, repo string, page int) ([]integrations.Contributor, int, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, 0, fmt.Errorf("%w: %s/%s: %v", integrations.ErrNotFound, owner, repo, err)
	}

	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{Page: page, PerPage: PageSize},
	}
	list, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		return nil, 0, c.mapError(ctx, owner+"/"+repo, err)
	}

	out := make([]integrations.Contributor, 0, len(list))
	for _, u := range list {
		if u.GetLogin() == "" {
			continue
		}
		out = append(out, integrations.Contributor{
			Login:         u.GetLogin(),
			ProfileURL:    u.GetHTMLURL(),
			Contributions: u.GetContributions(),
			Bot:           u.GetType() == "Bot",
		})
	}
	next := 0
	if resp != nil {
		next = resp.NextPage
	}
	return out, next, nil
}

func (c *Client) mapError(ctx context.Context, repo string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var rl *gh.RateLimitError
	if stderrors.As(err, &rl) {
		wait := max(rl.Rate.Reset.Time.Sub(c.now()), 0)
		return httputil.RetryAfter(&errors.RateLimitedError{RetryAfter: wait, Message: "github"}, wait)
	}
	var abuse *gh.AbuseRateLimitError
	if stderrors.As(err, &abuse) {
		wait := abuse.GetRetryAfter()
		return httputil.RetryAfter(&errors.RateLimitedError{RetryAfter: wait, Message: "github secondary limit"}, wait)
	}

	var resp *gh.ErrorResponse
	if stderrors.As(err, &resp) && resp.Response != nil {
		code := resp.Response.StatusCode
		switch {
		case code == http.StatusUnauthorized:
			return errors.New(errors.ErrCodeUnauthorized, "github rejected the token (status 401)")
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: github repo %s", integrations.ErrNotFound, repo)
		case code == http.StatusTooManyRequests:
			wait := integrations.RetryAfterHint(resp.Response.Header, c.now())
			return httputil.RetryAfter(&errors.RateLimitedError{RetryAfter: wait, Message: "github"}, wait)
		case code >= 500:
			return httputil.Retryable(fmt.Errorf("%w: github status %d", integrations.ErrNetwork, code))
		default:
			return fmt.Errorf("%w: github status %d: %s", integrations.ErrNetwork, code, resp.Message)
		}
	}
	return httputil.Retryable(fmt.Errorf("%w: %v", integrations.ErrNetwork, err))
}
