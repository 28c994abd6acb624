// Package httputil provides retry helpers shared by the registry and
// provider clients.
//
// # Retry
//
// [Policy.Do] re-runs an operation while it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - Rate-limit responses, honouring the server's wait hint
//
// Waits double from [Policy.Base] unless the error carries a hint
// ([RetryAfter]); every wait is capped at [Policy.Max].
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Other errors are returned immediately.
package httputil
