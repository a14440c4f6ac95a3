package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// DefaultLoadLimit caps how many items Load pulls from a feed URL.
const DefaultLoadLimit = 1000

// IsURL reports whether source names a remote feed rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads items from source. A file path is read whole. A feed URL is
// paged until it is exhausted or limit items have been read; limit <= 0
// means DefaultLoadLimit. Feed pages go through the runner's cache.
func (r *Runner) Load(ctx context.Context, source string, limit int, opts ...feed.ClientOption) ([]feed.Item, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	items, err := r.load(ctx, source, limit, opts)
	hooks.OnLoadComplete(ctx, source, len(items), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded items", "source", source, "items", len(items), "duration", time.Since(start))
	return items, nil
}

func (r *Runner) load(ctx context.Context, source string, limit int, opts []feed.ClientOption) ([]feed.Item, error) {
	if !IsURL(source) {
		return feed.ReadFile(source)
	}
	if limit <= 0 {
		limit = DefaultLoadLimit
	}

	opts = append([]feed.ClientOption{feed.WithCache(r.Cache, cache.TTLPage), feed.WithKeyer(r.Keyer)}, opts...)
	client, err := feed.NewClient(source, opts...)
	if err != nil {
		return nil, err
	}
	pager := feed.NewPager(client, 0, min(limit, feed.MaxPageSize))
	var items []feed.Item
	for len(items) < limit && !pager.Done() {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
