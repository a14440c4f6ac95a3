package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/core/window"
	"github.com/matzehuels/waterfall/pkg/feed"
)

type browseOptions struct {
	url      string
	columns  int
	gap      int
	buffer   int
	overscan int
	poolSize int
	pageSize int
	generate int
	seed     uint64
	noCache  bool
	refresh  bool
	logFile  string
}

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse [items.json]",
		Short: "Scroll a feed in a virtualized masonry view",
		Long: `Scroll a feed in a virtualized masonry view.

Only the cards near the viewport are rendered; cards that scroll away are
parked and reused when they come back. The next page is requested when the
view nears the bottom.

The feed is an item file, a feed server (--url) or, with neither, an
endless synthetic feed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return c.runBrowse(cmd.Context(), file, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "feed server base URL")
	cmd.Flags().IntVarP(&opts.columns, "columns", "c", 3, "number of columns")
	cmd.Flags().IntVar(&opts.gap, "gap", 1, "gap between cards")
	cmd.Flags().IntVar(&opts.buffer, "buffer", 0, "rows materialized beyond each viewport edge (default: one screen)")
	cmd.Flags().IntVar(&opts.overscan, "overscan", 0, "extra items kept on each side of the visible range (default: columns)")
	cmd.Flags().IntVar(&opts.poolSize, "pool-size", window.DefaultMaxPoolSize, "maximum parked cards (negative disables recycling)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", feed.DefaultPageSize, "items requested per page")
	cmd.Flags().IntVar(&opts.generate, "generate", 0, "length of the synthetic feed (0 = endless)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "synthetic feed seed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the page cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached pages")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs here while the view is open")

	return cmd
}

// runBrowse opens the feed and runs the interactive view until it quits.
func (c *CLI) runBrowse(ctx context.Context, file string, opts browseOptions) error {
	src, label, closeSrc, err := c.browseSource(ctx, file, opts)
	if err != nil {
		return err
	}
	defer closeSrc()

	restore, err := c.redirectLogs(opts.logFile)
	if err != nil {
		return err
	}
	model := newBrowseModel(ctx, feed.NewPager(src, 0, opts.pageSize), label, opts, c.Logger)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	model.close()
	restore()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	if model.err != nil {
		return model.err
	}

	stats := model.stats
	logWindowStats(c.Logger, stats)
	printSuccess("Browsed %s", label)
	printKeyValue("Items", fmt.Sprintf("%d loaded, %d pages", stats.Items, stats.Loads+1))
	printKeyValue("Cards", fmt.Sprintf("%d created, %d reused, %d evicted", stats.Created, stats.Reused, stats.Evicted))
	if stats.LoadFailures > 0 {
		printWarning("%d page loads failed", stats.LoadFailures)
	}
	return nil
}

// browseSource resolves where pages come from and a func releasing it.
func (c *CLI) browseSource(ctx context.Context, file string, opts browseOptions) (feed.PageSource, string, func(), error) {
	switch {
	case opts.url != "":
		cc, err := c.newCache(ctx, opts.noCache)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open cache: %w", err)
		}
		client, err := feed.NewClient(opts.url,
			feed.WithCache(cc, cache.TTLPage),
			feed.WithRefresh(opts.refresh),
		)
		if err != nil {
			_ = cc.Close()
			return nil, "", nil, err
		}
		return client, opts.url, func() { _ = cc.Close() }, nil
	case file != "":
		items, err := feed.ReadFile(file)
		if err != nil {
			return nil, "", nil, fmt.Errorf("load %s: %w", file, err)
		}
		return feed.NewMemoryStore(items), file, func() {}, nil
	default:
		label := fmt.Sprintf("synthetic feed (seed %d)", opts.seed)
		return feed.Generator{Seed: opts.seed, Limit: opts.generate}, label, func() {}, nil
	}
}

// redirectLogs keeps log output off the alternate screen. Logs go to path
// when given and are discarded otherwise.
func (c *CLI) redirectLogs(path string) (restore func(), err error) {
	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		if f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
	}
	c.Logger.SetOutput(w)
	return func() {
		c.Logger.SetOutput(c.logOut)
		if f != nil {
			_ = f.Close()
		}
	}, nil
}
