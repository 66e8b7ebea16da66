package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/onionharvest/internal/crawler"
	"github.com/nao1215/onionharvest/internal/database"
	"github.com/nao1215/onionharvest/internal/export"
	"github.com/nao1215/onionharvest/internal/model"
	"github.com/nao1215/onionharvest/internal/seed"
	"github.com/nao1215/onionharvest/internal/tor"
)

// SeedStep resolves the crawl's starting locations.
//
// When the session already carries explicit seeds they are validated
// and kept; otherwise the directory is searched with the session query.
// Either way the step fails with ErrNoSeeds when nothing usable
// remains, because a crawl without seeds can only produce an empty
// result.
type SeedStep struct {
	// seeder queries the clearnet directory. May be nil when only
	// explicit seeds are expected.
	seeder *seed.DirectorySeeder

	// logger for structured logging.
	logger *slog.Logger
}

// SeedStepOption configures a SeedStep.
type SeedStepOption func(*SeedStep)

// WithSeedStepLogger sets a custom logger for the seed step.
func WithSeedStepLogger(logger *slog.Logger) SeedStepOption {
	return func(s *SeedStep) {
		s.logger = logger
	}
}

// NewSeedStep creates a seed resolution step.
func NewSeedStep(seeder *seed.DirectorySeeder, opts ...SeedStepOption) *SeedStep {
	s := &SeedStep{
		seeder: seeder,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SeedStep) Name() string {
	return "seed"
}

// Do resolves and validates the session's seeds.
func (s *SeedStep) Do(ctx context.Context, session *model.Session) error {
	if len(session.Seeds) == 0 {
		if s.seeder == nil {
			return ErrNoSeeds
		}
		session.Seeds = s.seeder.Search(ctx, session.Query)
	}

	if len(session.Seeds) == 0 {
		return ErrNoSeeds
	}

	// Validation is advisory: a malformed seed is still handed to the
	// crawl, where admission checks reject it without a network call.
	// Warning here gives the user an actionable message up front.
	for _, seedURL := range session.Seeds {
		if err := tor.ValidateSeedURL(seedURL); err != nil {
			s.logger.Warn("seed looks invalid", "seed", seedURL, "error", err)
			continue
		}
		if host := onionHostOf(seedURL); host != "" && tor.IsV2Address(host) {
			s.logger.Warn("seed uses a retired v2 onion address", "seed", seedURL)
		}
	}

	s.logger.Info("seeds resolved", "count", len(session.Seeds))
	return nil
}

// onionHostOf pulls the host out of a seed URL for v2 detection.
// Best effort: an empty result just skips the deprecation warning.
func onionHostOf(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "https://")
	}
	if !ok {
		return ""
	}
	if idx := strings.IndexAny(rest, "/:?"); idx != -1 {
		rest = rest[:idx]
	}
	return rest
}

// CrawlStep executes the breadth-first crawl and stores its results in
// the session.
//
// Design decision: the step receives a fully built engine rather than
// building one itself, because the engine's collaborators (proxied HTTP
// client, extractor rules) are wired by the command layer, which also
// consumes the engine's notification channel.
type CrawlStep struct {
	// engine is the crawl engine, built and owned by the caller.
	engine *crawler.Engine

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlStepLogger sets a custom logger for the crawl step.
func WithCrawlStepLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl execution step around an engine.
func NewCrawlStep(engine *crawler.Engine, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		engine: engine,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl and records its outcome in the session.
// A stopped crawl is not an error: partial results are kept and the
// remaining steps still run.
func (s *CrawlStep) Do(ctx context.Context, session *model.Session) error {
	session.StartedAt = time.Now()
	session.Records = s.engine.Run(ctx, session.Seeds)
	session.FinishedAt = time.Now()
	session.PagesVisited = s.engine.PagesVisited()

	s.logger.Info("crawl finished",
		"state", s.engine.State().String(),
		"pages_visited", session.PagesVisited,
		"records", len(session.Records),
	)

	if s.engine.State() == crawler.StateFailed {
		return ErrCrawlFailed
	}
	return nil
}

// ExportStep writes the session to the configured export writer.
type ExportStep struct {
	// writer renders the session; typically a format writer or a
	// MultiWriter targeting both terminal and file.
	writer export.Writer

	// logger for structured logging.
	logger *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithExportStepLogger sets a custom logger for the export step.
func WithExportStepLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		s.logger = logger
	}
}

// NewExportStep creates an export step around a writer.
func NewExportStep(writer export.Writer, opts ...ExportStepOption) *ExportStep {
	s := &ExportStep{
		writer: writer,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do writes the session through the configured writer.
func (s *ExportStep) Do(_ context.Context, session *model.Session) error {
	n, err := s.writer.Write(session)
	if err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}
	s.logger.Debug("session exported", "bytes", n)
	return nil
}

// PersistStep saves the session to the crawl history database.
type PersistStep struct {
	// db is the history database. Nil disables persistence, turning
	// the step into a no-op so pipelines can be assembled uniformly.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistStepLogger sets a custom logger for the persist step.
func WithPersistStepLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a history persistence step.
func NewPersistStep(db *database.CrawlDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the session to the history database.
func (s *PersistStep) Do(ctx context.Context, session *model.Session) error {
	if s.db == nil {
		s.logger.Debug("history persistence disabled")
		return nil
	}

	runID, err := s.db.SaveSession(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to save crawl history: %w", err)
	}
	s.logger.Info("crawl saved to history", "run_id", runID)
	return nil
}

// IsNoSeeds reports whether err means the pipeline found nothing to
// crawl. The command layer maps this to a user-facing message rather
// than a stack of wrapped errors.
func IsNoSeeds(err error) bool {
	return errors.Is(err, ErrNoSeeds)
}
