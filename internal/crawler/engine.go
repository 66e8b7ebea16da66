package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/nao1215/onionharvest/internal/model"
)

// State is the lifecycle state of a crawl engine.
type State int32

// Engine lifecycle states.
const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota

	// StateRunning means the traversal loop is active.
	StateRunning

	// StateCompleted means the crawl exhausted its frontier or caps.
	StateCompleted

	// StateStopped means the crawl ended early on an external stop
	// signal or context cancellation.
	StateStopped

	// StateFailed means the crawl worker hit a programming error
	// (a recovered panic), not a network failure.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// notificationBuffer is the capacity of the progress channel. Sends are
// non-blocking: when the consumer lags behind, progress lines are
// dropped instead of stalling the crawl.
const notificationBuffer = 64

// Engine owns one crawl: the frontier, the visited set, and the
// traversal loop that drives the fetcher and the content extractor.
//
// The traversal is strictly sequential and breadth-first. All mutable
// state is confined to the goroutine running Run, so the engine needs
// no locks; the only cross-goroutine surfaces are the atomic stop flag,
// the atomic state word, and the one-way notification channel.
//
// No error inside a run is fatal. Failed fetches and unparseable
// elements are logged, counted, and skipped; a run only ends early on
// frontier exhaustion, the page cap, or an external stop.
type Engine struct {
	// fetcher retrieves and parses pages.
	fetcher *Fetcher

	// extractor produces records from parsed pages.
	extractor *ContentExtractor

	// marker admits discovered links.
	marker string

	// maxDepth limits link-following; entries beyond it are discarded
	// at pop time, so it also guards entries queued before a depth was
	// exceeded.
	maxDepth int

	// maxPages caps processed frontier entries, counting failed
	// fetches.
	maxPages int

	// maxTotalItems caps the returned record collection.
	maxTotalItems int

	// logger for structured logging.
	logger *slog.Logger

	// state is the current lifecycle state.
	state atomic.Int32

	// stopped is the external stop signal, checked once per frontier
	// iteration. An in-flight fetch is allowed to complete.
	stopped atomic.Bool

	// pagesVisited counts processed frontier entries.
	pagesVisited int

	// notifications carries progress lines to the controlling context.
	notifications chan model.Notification
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxDepth sets the maximum crawl depth. 0 crawls only the seeds.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithMaxPages sets the total page cap.
func WithMaxPages(maxPages int) EngineOption {
	return func(e *Engine) {
		e.maxPages = maxPages
	}
}

// WithMaxTotalItems sets the overall record cap applied to the result
// collection.
func WithMaxTotalItems(n int) EngineOption {
	return func(e *Engine) {
		e.maxTotalItems = n
	}
}

// WithEngineDomainMarker sets the substring discovered links must
// contain to enter the frontier.
func WithEngineDomainMarker(marker string) EngineOption {
	return func(e *Engine) {
		e.marker = marker
	}
}

// WithEngineLogger sets a custom logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine around a fetcher and a content extractor.
func NewEngine(fetcher *Fetcher, extractor *ContentExtractor, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:       fetcher,
		extractor:     extractor,
		marker:        ".onion",
		maxDepth:      1,
		maxPages:      30,
		maxTotalItems: 20,
		logger:        slog.Default(),
		notifications: make(chan model.Notification, notificationBuffer),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Notifications returns the progress channel. It is closed when Run
// returns, so consumers can simply range over it.
func (e *Engine) Notifications() <-chan model.Notification {
	return e.notifications
}

// Stop signals the engine to cease dequeuing further entries. The
// check happens at the top of each frontier iteration; an in-flight
// fetch completes and its results are kept.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// PagesVisited returns the number of frontier entries processed so far.
// Meaningful to read only after Run returns.
func (e *Engine) PagesVisited() int {
	return e.pagesVisited
}

// Run executes one breadth-first crawl from the given seeds and returns
// the accumulated records, truncated to the overall item cap. Run is
// one-shot: an Engine is built per crawl and not reused.
//
// Results are appended in strict visitation order, so the output is
// deterministic given a deterministic network.
func (e *Engine) Run(ctx context.Context, seeds []string) (records []model.Record) {
	e.state.Store(int32(StateRunning))
	defer close(e.notifications)

	// Defensive catch-all: a panic here is a programming error, not a
	// crawl outcome. Surface it and return what was accumulated.
	defer func() {
		if r := recover(); r != nil {
			e.state.Store(int32(StateFailed))
			e.logger.Error("crawl worker panicked", "panic", r)
			e.notify(model.SeverityError, fmt.Sprintf("crawl failed: %v", r))
			records = truncateRecords(records, e.maxTotalItems)
		}
	}()

	e.notify(model.SeverityInfo, fmt.Sprintf("starting crawl: %d seeds, depth %d, page cap %d",
		len(seeds), e.maxDepth, e.maxPages))

	var queue frontier
	visited := make(visitedSet)
	for _, seed := range seeds {
		queue.push(seed, 0)
	}

	for queue.len() > 0 && e.pagesVisited < e.maxPages {
		if ctx.Err() != nil || e.stopped.Load() {
			e.state.Store(int32(StateStopped))
			e.notify(model.SeverityWarn, "crawl stopped before frontier was exhausted")
			return truncateRecords(records, e.maxTotalItems)
		}

		entry, _ := queue.pop()

		// Depth is re-checked here, not only at push time: entries
		// queued while a shallower page was processed may exceed the
		// limit by the time they surface. Discards do not count
		// against the page cap.
		if visited.contains(entry.location) || entry.depth > e.maxDepth {
			continue
		}
		visited.add(entry.location)

		e.logger.Info("crawling", "url", entry.location, "depth", entry.depth)
		e.notify(model.SeverityInfo, fmt.Sprintf("crawling %s (depth %d)", entry.location, entry.depth))

		doc, err := e.fetcher.Fetch(ctx, entry.location)
		if err != nil {
			e.reportFetchError(entry.location, err)
		} else {
			records = append(records, e.extractor.Extract(doc, entry.location)...)

			if entry.depth < e.maxDepth {
				for _, link := range ExtractLinks(doc, entry.location, e.marker) {
					if !visited.contains(link) {
						queue.push(link, entry.depth+1)
					}
				}
			}
		}

		// Failed fetches count too: the cap bounds work performed,
		// not work that happened to succeed.
		e.pagesVisited++
	}

	e.state.Store(int32(StateCompleted))
	e.notify(model.SeverityInfo, fmt.Sprintf("crawl completed: %d pages visited, %d records",
		e.pagesVisited, len(records)))

	return truncateRecords(records, e.maxTotalItems)
}

// reportFetchError logs a failed fetch with the right severity and
// posts a matching notification. Admission rejections are routine and
// logged as warnings; transport failures are errors.
func (e *Engine) reportFetchError(location string, err error) {
	switch {
	case errors.Is(err, ErrInvalidScheme), errors.Is(err, ErrDomainNotAllowed):
		e.logger.Warn("location rejected", "url", location, "error", err)
		e.notify(model.SeverityWarn, fmt.Sprintf("skipped %s: %v", location, err))
	default:
		e.logger.Error("fetch failed", "url", location, "error", err)
		e.notify(model.SeverityError, fmt.Sprintf("failed to fetch %s: %v", location, err))
	}
}

// notify posts a progress line without ever blocking the crawl loop.
func (e *Engine) notify(severity model.Severity, message string) {
	select {
	case e.notifications <- model.NewNotification(severity, message):
	default:
		// Consumer is lagging; drop the line rather than stall.
	}
}

// truncateRecords caps the result collection at n records.
func truncateRecords(records []model.Record, n int) []model.Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}
