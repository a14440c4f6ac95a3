package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/pipeline"
)

// layoutCommand creates the layout command for static masonry renders.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
		limit   int
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [items.json|URL]",
		Short: "Lay out a feed and render it",
		Long: `Lay out a feed and render it.

The layout command measures every item of an item file or feed URL, places
the cards into balanced masonry columns and writes one artifact per format:
svg, png, pdf (png and pdf need rsvg-convert) or json geometry.

--viewport top:height highlights the cards a browser window at that scroll
position would mark as visible.

Feed pages and rendered artifacts are cached locally for faster
subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, limit)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input>.<format>)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "comma-separated formats: svg, png, pdf, json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&limit, "limit", pipeline.DefaultLoadLimit, "maximum items to read from a feed URL")

	cmd.Flags().IntVarP(&opts.Columns, "columns", "c", pipeline.DefaultColumns, "number of columns")
	cmd.Flags().IntVar(&opts.Gap, "gap", pipeline.DefaultGap, "gap between cards")
	cmd.Flags().IntVarP(&opts.Width, "width", "w", pipeline.DefaultWidth, "container width")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", pipeline.DefaultConcurrency, "parallel measurements")
	cmd.Flags().DurationVar(&opts.MeasureTimeout, "measure-timeout", 0, "per-item measurement timeout (0 = none)")
	cmd.Flags().StringVar(&opts.Theme, "theme", pipeline.DefaultTheme, "color theme: light, dark")
	cmd.Flags().BoolVar(&opts.Bodies, "bodies", false, "include item bodies in json output")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached pages and artifacts")
	cmd.Flags().Var(&viewportFlag{top: &opts.ViewportTop, height: &opts.ViewportHeight}, "viewport", "highlight visible cards at top:height")

	return cmd
}

// runLayout loads the items, lays them out and writes one file per format.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, limit int) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var clientOpts []feed.ClientOption
	if opts.Refresh {
		clientOpts = append(clientOpts, feed.WithRefresh(true))
	}
	items, err := runner.Load(ctx, input, limit, clientOpts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	logger := loggerFromContext(ctx)
	opts.Source = input
	opts.Logger = logger
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d items...", len(items)))
	spinner.Start()

	result, err := runner.Execute(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("Laid out feed", "items", result.Stats.Items, "failed", result.Stats.Failed, "height", result.Stats.TotalHeight)

	base := outputBase(input, output)
	printSuccess("Layout complete")
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.Items, result.Stats.Failed, result.Stats.TotalHeight, result.CacheInfo.RenderHit)
	return nil
}

// outputBase returns the path artifacts are written under, without the
// format extension.
func outputBase(input, output string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if pipeline.IsURL(input) {
		return "feed"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// viewportFlag parses "top:height" into two ints.
type viewportFlag struct {
	top, height *int
}

func (v *viewportFlag) String() string {
	if v.top == nil || *v.height == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", *v.top, *v.height)
}

func (v *viewportFlag) Set(s string) error {
	var top, height int
	if _, err := fmt.Sscanf(s, "%d:%d", &top, &height); err != nil {
		return fmt.Errorf("want top:height, got %q", s)
	}
	if top < 0 || height <= 0 {
		return fmt.Errorf("viewport %q out of range", s)
	}
	*v.top, *v.height = top, height
	return nil
}

func (v *viewportFlag) Type() string { return "top:height" }
