package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/waterfall/pkg/feed"
)

const (
	defaultServeAddr = "127.0.0.1:8080"
	mongoEnv         = "WATERFALL_MONGO_URI"
	shutdownTimeout  = 5 * time.Second
)

type serveOptions struct {
	addr       string
	mongoURI   string
	database   string
	collection string
	importFile bool
	generate   int
	seed       uint64
}

// serveCommand creates the serve command that exposes a feed over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [items.json]",
		Short: "Serve a feed over HTTP",
		Long: `Serve a feed over HTTP.

Items come from an item file, a synthetic feed (--generate) or a MongoDB
collection (--mongo or $` + mongoEnv + `). With --import the item file is
appended to the collection before serving.

Endpoints:
  GET /items?offset=0&limit=50   one page of items
  GET /healthz                   liveness probe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			if opts.mongoURI == "" {
				opts.mongoURI = os.Getenv(mongoEnv)
			}
			return c.runServe(cmd.Context(), file, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI to serve from")
	cmd.Flags().StringVar(&opts.database, "database", feed.DefaultMongoDatabase, "MongoDB database")
	cmd.Flags().StringVar(&opts.collection, "collection", feed.DefaultMongoCollection, "MongoDB collection")
	cmd.Flags().BoolVar(&opts.importFile, "import", false, "append the item file to the MongoDB collection")
	cmd.Flags().IntVar(&opts.generate, "generate", 0, "serve this many synthetic items")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "generator seed for --generate")

	return cmd
}

// runServe opens the store and serves it until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, file string, opts serveOptions) error {
	store, closeStore, err := c.openStore(ctx, file, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	total, err := store.Len(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           feed.NewServer(store, logger.WithPrefix("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Serving %d items", total)
	printKeyValue("Address", "http://"+opts.addr+"/items")
	printNewline()
	printNextStep("Browse", appName+" browse --url http://"+opts.addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return ctx.Err()
}

// openStore resolves the store serve reads from and a func that releases it.
func (c *CLI) openStore(ctx context.Context, file string, opts serveOptions) (feed.Store, func(), error) {
	var items []feed.Item
	switch {
	case file != "":
		var err error
		if items, err = feed.ReadFile(file); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", file, err)
		}
	case opts.generate > 0:
		items = feed.Generate(opts.seed, 0, opts.generate)
	case opts.mongoURI == "":
		return nil, nil, fmt.Errorf("nothing to serve: pass an item file, --generate or --mongo")
	}

	if opts.mongoURI == "" {
		return feed.NewMemoryStore(items), func() {}, nil
	}

	store, err := feed.NewMongoStore(ctx, opts.mongoURI, opts.database, opts.collection)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			c.Logger.Warn("close mongodb", "err", err)
		}
	}
	if opts.importFile && len(items) > 0 {
		if err := store.Insert(ctx, items); err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("import items: %w", err)
		}
		printInfo("Imported %d items into %s.%s", len(items), opts.database, opts.collection)
	}
	return store, closeStore, nil
}
