package gitlab

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/acknowledge/pkg/buildinfo"
	"github.com/matzehuels/acknowledge/pkg/integrations"
)

// PageSize is the number of contributors requested per page, the API maximum.
const PageSize = 100

// Client lists repository contributors through the GitLab REST API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitLab API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests.
func NewClient(token string) *Client {
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	if token != "" {
		headers["PRIVATE-TOKEN"] = token
	}
	return &Client{
		Client:  integrations.NewClient(nil, headers),
		baseURL: "https://gitlab.com/api/v4",
	}
}

// SetBaseURL points the client at a self-hosted instance or test server.
// raw is the API root, e.g. "https://gitlab.example.com/api/v4".
func (c *Client) SetBaseURL(raw string) {
	c.baseURL = strings.TrimRight(raw, "/")
}

// Contributors fetches one page of a project's contributors. owner may
// contain subgroups ("group/subgroup"). next is the following page number,
// or 0 on the last page.
//
// GitLab reports commit authors by name and email only, so the returned
// contributors have no ProfileURL.
func (c *Client) Contributors(ctx context.Context, owner, repo string, page int) ([]integrations.Contributor, int, error) {
	project := integrations.PathEscape(owner + "/" + repo)
	url := fmt.Sprintf("%s/projects/%s/repository/contributors?order_by=commits&sort=desc&per_page=%d&page=%d",
		c.baseURL, project, PageSize, page)

	var data []contributorResponse
	h, err := c.GetWithHeaders(ctx, url, nil, &data)
	if err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: gitlab project %s/%s", err, owner, repo)
		}
		return nil, 0, err
	}

	out := make([]integrations.Contributor, 0, len(data))
	for _, d := range data {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		out = append(out, integrations.Contributor{
			Login:         d.Name,
			Contributions: d.Commits,
		})
	}

	next, _ := strconv.Atoi(strings.TrimSpace(h.Get("X-Next-Page")))
	return out, next, nil
}

type contributorResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Commits int    `json:"commits"`
}
