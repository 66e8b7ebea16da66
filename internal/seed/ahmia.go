package seed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// defaultResultSelector matches the anchor inside each search result on
// the Ahmia result page layout.
const defaultResultSelector = ".result .title a"

// DirectorySeeder queries a clearnet hidden-service directory and
// returns onion URLs usable as crawl seeds.
//
// Seeding is best-effort: any failure, from the network up to an empty
// result page, yields an empty seed list and a log line, never an
// error. The caller decides whether a crawl without seeds is worth
// reporting to the user.
type DirectorySeeder struct {
	// client performs the search request. It must NOT be routed
	// through the Tor proxy; the directory lives on the clearnet.
	client *http.Client

	// endpoint is the search URL, queried as endpoint?q=<query>.
	endpoint string

	// resultSelector locates result anchors on the response page.
	resultSelector string

	// marker filters discovered URLs to the target domain space.
	marker string

	// limit caps the number of returned seeds.
	limit int

	// delay is the pacing delay paid after each directory query.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// DirectorySeederOption configures a DirectorySeeder.
type DirectorySeederOption func(*DirectorySeeder)

// WithEndpoint sets the directory search endpoint.
func WithEndpoint(endpoint string) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.endpoint = endpoint
	}
}

// WithResultSelector sets the CSS selector locating result anchors.
func WithResultSelector(selector string) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.resultSelector = selector
	}
}

// WithSeedMarker sets the substring a discovered URL must contain.
func WithSeedMarker(marker string) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.marker = marker
	}
}

// WithSeedLimit caps the number of seeds returned per search.
func WithSeedLimit(n int) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.limit = n
	}
}

// WithSeedDelay sets the pacing delay paid after each search.
func WithSeedDelay(d time.Duration) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.delay = d
	}
}

// WithSeederLogger sets a custom logger.
func WithSeederLogger(logger *slog.Logger) DirectorySeederOption {
	return func(s *DirectorySeeder) {
		s.logger = logger
	}
}

// NewDirectorySeeder creates a DirectorySeeder with the given clearnet
// HTTP client.
func NewDirectorySeeder(client *http.Client, opts ...DirectorySeederOption) *DirectorySeeder {
	s := &DirectorySeeder{
		client:         client,
		endpoint:       "https://ahmia.fi/search/",
		resultSelector: defaultResultSelector,
		marker:         ".onion",
		limit:          10,
		delay:          2 * time.Second,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Search queries the directory for the given term and returns the
// discovered seed URLs, deduplicated and capped, in result-page order.
// A blank query returns no seeds without touching the network.
func (s *DirectorySeeder) Search(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	doc, err := s.fetchResults(ctx, query)
	if err != nil {
		s.logger.Warn("directory search failed", "query", query, "error", err)
		return nil
	}

	seeds := make([]string, 0, s.limit)
	seen := make(map[string]struct{})
	doc.Find(s.resultSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		href = strings.TrimSpace(href)
		if !strings.Contains(href, s.marker) {
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}
		seen[href] = struct{}{}
		seeds = append(seeds, href)
		return len(seeds) < s.limit
	})

	s.logger.Info("directory search finished", "query", query, "seeds", len(seeds))
	return seeds
}

// fetchResults performs the search request and parses the result page.
// The pacing delay is paid after the request, successful or not.
func (s *DirectorySeeder) fetchResults(ctx context.Context, query string) (*goquery.Document, error) {
	searchURL := s.endpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	defer s.pace(ctx)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse result page: %w", err)
	}
	return doc, nil
}

// pace blocks for the configured delay or until the context ends.
func (s *DirectorySeeder) pace(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.delay):
	}
}
