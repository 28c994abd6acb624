// Package gitlab lists repository contributors through the GitLab API.
//
// # Usage
//
//	client := gitlab.NewClient(os.Getenv("GITLAB_TOKEN"))
//	contributors, next, err := client.Contributors(ctx, "group/sub", "project", 1)
//
// Pagination follows the X-Next-Page response header. Rate-limit responses
// (429) are retryable and carry the RateLimit-Reset hint.
//
// # Attribution
//
// The contributors endpoint aggregates commits by author name and email;
// there is no link to a GitLab account, so results have no profile URL.
package gitlab
