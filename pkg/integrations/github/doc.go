// Package github lists repository contributors through the GitHub API.
//
// # Usage
//
//	client := github.NewClient(os.Getenv("GITHUB_TOKEN"))
//	page := 1
//	for page != 0 {
//	    contributors, next, err := client.Contributors(ctx, "serde-rs", "serde", page)
//	    if err != nil {
//	        return err
//	    }
//	    // ...
//	    page = next
//	}
//
// # Authentication
//
// A GitHub personal access token is optional but recommended. Without a
// token, the API allows 60 requests/hour; with one, 5000 requests/hour.
//
// # Rate Limits
//
// Primary and secondary rate-limit responses are reported as retryable
// RATE_LIMITED errors carrying the time until the limit resets. The
// underlying client also refuses further requests until that reset.
package github
