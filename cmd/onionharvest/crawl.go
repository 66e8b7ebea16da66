package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/onionharvest/internal/config"
	"github.com/nao1215/onionharvest/internal/crawler"
	"github.com/nao1215/onionharvest/internal/database"
	"github.com/nao1215/onionharvest/internal/export"
	"github.com/nao1215/onionharvest/internal/log"
	"github.com/nao1215/onionharvest/internal/model"
	"github.com/nao1215/onionharvest/internal/pipeline"
	"github.com/nao1215/onionharvest/internal/seed"
	"github.com/nao1215/onionharvest/internal/tor"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [query]",
		Short: "Crawl onion services and extract text content",
		Long: `Crawl discovers onion seed pages through a clearnet directory search,
then crawls them breadth-first through a Tor SOCKS5 proxy. Text content
is extracted with CSS selector rules, filtered by keywords, and exported
as JSON, CSV, or Markdown.

The crawl is bounded on every axis: link-following depth, total pages,
records per page, and overall records. A pacing delay is paid after
every fetch, successful or not.

Examples:
  # Search the directory and crawl the results
  onionharvest crawl "hidden wiki"

  # Crawl explicit seeds instead of searching
  onionharvest crawl --seed http://exampleonion.onion/

  # Extract with selector rules and a keyword filter
  onionharvest crawl "marketplace" --selector ".listing" --keywords bitcoin,escrow

  # Follow links one level deep and export CSV to a file
  onionharvest crawl "forum" --depth 1 --format csv --output records.csv

  # Start an embedded Tor daemon instead of using an external proxy
  onionharvest crawl --embedded-tor "hidden wiki"

Profile file (.onionharvest) example:
  query: hidden wiki
  keywords:
    - bitcoin
  selectors:
    - ".listing"
    - ".result .title"
  depth: 1
  delaySeconds: 2.5`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Seed discovery flags
	cmd.Flags().StringArrayP("seed", "s", nil,
		"Explicit seed URL, repeatable (skips the directory search)")
	cmd.Flags().Int("seed-limit", config.DefaultSeedLimit,
		"Maximum seeds taken from a directory search")

	// Extraction flags
	cmd.Flags().StringP("keywords", "k", "",
		"Comma-separated keywords; a record must contain at least one")
	cmd.Flags().StringArray("selector", nil,
		"CSS selector extraction rule, repeatable, first match wins")
	cmd.Flags().String("selectors-file", "",
		"File with one CSS selector per line (# starts a comment)")

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		fmt.Sprintf("Link-following depth, 0 crawls only the seeds (max %d)", config.MaxCrawlDepth))
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pacing delay paid after every fetch attempt")
	cmd.Flags().IntP("max-items", "n", config.DefaultMaxItemsPerPage,
		"Maximum records extracted per page")
	cmd.Flags().Int("max-total-items", 0,
		"Overall record cap (default: same as --max-items)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum pages visited, counting failed fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-request timeout for page fetches")
	cmd.Flags().String("marker", config.DefaultDomainMarker,
		"Substring a location must contain to be crawled")

	// Tor connection flags
	cmd.Flags().StringP("proxy", "e", config.DefaultProxyAddress,
		"Tor SOCKS5 proxy address")
	cmd.Flags().Bool("embedded-tor", false,
		"Start an embedded Tor daemon instead of using --proxy")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Profile file
	cmd.Flags().StringP("profile", "c", "",
		"Profile file path (default: .onionharvest in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write exported records to specified file path (default: stdout)")
	cmd.Flags().StringP("format", "f", "json",
		"Export format: json, csv, or markdown")
	cmd.Flags().Bool("no-history", false,
		"Do not save the crawl to the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments form the directory search query.
	cfg.Query = strings.TrimSpace(strings.Join(args, " "))

	var err error

	cfg.Seeds, err = cmd.Flags().GetStringArray("seed")
	if err != nil {
		return nil, err
	}

	cfg.SeedLimit, err = cmd.Flags().GetInt("seed-limit")
	if err != nil {
		return nil, err
	}

	keywords, err := cmd.Flags().GetString("keywords")
	if err != nil {
		return nil, err
	}
	cfg.Keywords = config.ParseKeywords(keywords)

	cfg.Selectors, err = cmd.Flags().GetStringArray("selector")
	if err != nil {
		return nil, err
	}

	selectorsFile, err := cmd.Flags().GetString("selectors-file")
	if err != nil {
		return nil, err
	}
	if selectorsFile != "" {
		data, err := os.ReadFile(selectorsFile) //nolint:gosec // User-provided selector path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read selectors file: %w", err)
		}
		cfg.Selectors = append(cfg.Selectors, config.ParseSelectors(string(data))...)
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxItemsPerPage, err = cmd.Flags().GetInt("max-items")
	if err != nil {
		return nil, err
	}

	cfg.MaxTotalItems, err = cmd.Flags().GetInt("max-total-items")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.DomainMarker, err = cmd.Flags().GetString("marker")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.UseEmbeddedTor, err = cmd.Flags().GetBool("embedded-tor")
	if err != nil {
		return nil, err
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if !noHistory {
		cfg.DBDir = config.XDGDataDir()
	}

	// Overlay the profile file, if any. An explicitly specified profile
	// that does not exist is an error; the default locations are
	// optional.
	profilePath, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	if found := config.FindProfile(profilePath); found != "" {
		profile, err := config.LoadProfile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %s: %w", found, err)
		}
		profile.Apply(cfg)
	} else if profilePath != "" {
		return nil, fmt.Errorf("profile file not found: %s", profilePath)
	}

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"query", cfg.Query,
		"seeds", len(cfg.Seeds),
		"depth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"useEmbeddedTor", cfg.UseEmbeddedTor,
	)

	// Open the history database unless persistence is disabled.
	var db *database.CrawlDB
	if cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	// Set up the Tor connection.
	client, cleanup, err := setupTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// The directory seeder uses a plain clearnet client on purpose;
	// only page fetches go through Tor.
	var seeder *seed.DirectorySeeder
	if cfg.Query != "" {
		seeder = seed.NewDirectorySeeder(
			&http.Client{Timeout: cfg.SearchTimeout},
			seed.WithEndpoint(cfg.SearchEndpoint),
			seed.WithSeedMarker(cfg.DomainMarker),
			seed.WithSeedLimit(cfg.SeedLimit),
			seed.WithSeedDelay(cfg.Delay),
			seed.WithSeederLogger(logger),
		)
	}

	fetcher := crawler.NewFetcher(client.NewHTTPClient(),
		crawler.WithDomainMarker(cfg.DomainMarker),
		crawler.WithDelay(cfg.Delay),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithFetcherLogger(logger),
	)

	extractor := crawler.NewContentExtractor(
		crawler.WithRules(cfg.Selectors),
		crawler.WithKeywords(cfg.Keywords),
		crawler.WithMaxItems(cfg.MaxItemsPerPage),
		crawler.WithContentLogger(logger),
	)

	engine := crawler.NewEngine(fetcher, extractor,
		crawler.WithEngineDomainMarker(cfg.DomainMarker),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxTotalItems(cfg.TotalItemCap()),
		crawler.WithEngineLogger(logger),
	)

	writer, closeOutput, err := newExportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(false),
	)
	p.AddSteps(
		pipeline.NewSeedStep(seeder, pipeline.WithSeedStepLogger(logger)),
		pipeline.NewCrawlStep(engine, pipeline.WithCrawlStepLogger(logger)),
		pipeline.NewExportStep(writer, pipeline.WithExportStepLogger(logger)),
		pipeline.NewPersistStep(db, pipeline.WithPersistStepLogger(logger)),
	)

	session := &model.Session{
		Query: cfg.Query,
		Seeds: cfg.Seeds,
	}

	// The crawl and its progress printer run concurrently: the engine
	// never blocks on a slow terminal, and the printer exits when the
	// notification channel closes or the group context ends.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case n, ok := <-engine.Notifications():
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Severity, n.Message)
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		return p.Execute(gctx, session)
	})

	if err := g.Wait(); err != nil {
		if pipeline.IsNoSeeds(err) {
			return errors.New("no seeds found (check the query, or pass --seed)")
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "Harvest finished: %d pages visited, %d records\n",
		session.PagesVisited, len(session.Records))
	return nil
}

// setupTor connects to an external Tor proxy or starts an embedded
// daemon, returning a verified client and a cleanup function.
func setupTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	if !cfg.UseEmbeddedTor {
		client, err := tor.NewClient(cfg.ProxyAddress, cfg.FetchTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}

		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.ProxyAddress)
		}

		logger.Info("Tor proxy connection verified", "address", cfg.ProxyAddress)
		return client, func() {}, nil
	}

	fmt.Fprintln(os.Stderr, "Starting embedded Tor daemon...")
	fmt.Fprintf(os.Stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())

	client, err := embedded.NewClient(cfg.FetchTimeout)
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	cleanup := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
	return client, cleanup, nil
}

// newExportWriter builds the export writer for the configured format
// and destination. The returned closer is a no-op for stdout.
func newExportWriter(cfg *config.Config) (export.Writer, func(), error) {
	var output io.Writer = os.Stdout
	closeOutput := func() {}

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600 because harvested content may be sensitive.
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeOutput = func() { _ = f.Close() } //nolint:errcheck // Best effort close
	}

	switch cfg.Format {
	case "csv":
		return export.NewCSVWriter(output), closeOutput, nil
	case "markdown":
		return export.NewMarkdownWriter(output), closeOutput, nil
	default:
		return export.NewJSONWriter(output,
			export.WithPrettyPrint(),
			export.WithVersion(getVersion()),
		), closeOutput, nil
	}
}
