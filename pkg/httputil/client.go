package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// DefaultTimeout bounds a whole request made by [NewClient] clients.
const DefaultTimeout = 10 * time.Second

// NewClient returns an HTTP client with [DefaultTimeout].
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// GetJSON performs a GET request for url and decodes a 200 response body
// into v. Failures carry a pkg/errors code; transient ones are also
// wrapped in RetryableError.
func GetJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	began := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(began))

	if err := CheckStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", url)
	}
	return nil
}

// CheckStatus maps a response status to an error. 200 is success.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d", code)
	case code == http.StatusBadRequest:
		return errors.New(errors.ErrCodeInvalidInput, "status %d", code)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return Retryable(&errors.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", code)
	}
}
