// Package httputil provides the HTTP plumbing shared by feed clients.
//
// [GetJSON] performs a GET request, maps response codes to structured
// errors and reports the request to the registered observability HTTP
// hooks. Transient failures (network errors, 5xx, 429) are wrapped in
// [RetryableError] so that [Retry] attempts them again:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return httputil.GetJSON(ctx, client, url, &page)
//	})
//
// Other failures are returned immediately.
package httputil
