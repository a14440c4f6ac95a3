package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/httputil"
)

// Client fetches pages from a feed [Server].
//
// Full pages are cached under [cache.Keyer.PageKey]. Short pages are never
// cached because the feed may still grow past them.
type Client struct {
	base     string
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	refresh  bool
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. The default has [httputil.DefaultTimeout].
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithCache stores full pages in cc for ttl.
func WithCache(cc cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache.Instrument(cc, "page")
		c.ttl = ttl
	}
}

// WithKeyer overrides the cache key scheme.
func WithKeyer(k cache.Keyer) ClientOption {
	return func(c *Client) { c.keyer = k }
}

// WithRefresh bypasses cached pages on read. Fetched pages are still stored.
func WithRefresh(refresh bool) ClientOption {
	return func(c *Client) { c.refresh = refresh }
}

// WithRetry sets the number of attempts and the initial backoff delay for
// transient failures.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient returns a client for the feed rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     httputil.NewClient(),
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      cache.TTLPage,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Page implements PageSource.
func (c *Client) Page(ctx context.Context, offset, limit int) ([]Item, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	key := c.keyer.PageKey(c.base, offset, limit)

	var resp PageResponse
	if !c.refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && json.Unmarshal(data, &resp) == nil {
			return resp.Items, nil
		}
	}

	u := c.pageURL(offset, limit)
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		resp = PageResponse{}
		return httputil.GetJSON(ctx, c.http, u, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch page at %d: %w", offset, err)
	}

	if len(resp.Items) == limit {
		if data, err := json.Marshal(resp); err == nil {
			_ = c.cache.Set(ctx, key, data, c.ttl)
		}
	}
	return resp.Items, nil
}

func (c *Client) pageURL(offset, limit int) string {
	q := url.Values{}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(limit))
	return c.base + "/items?" + q.Encode()
}

var _ PageSource = (*Client)(nil)
