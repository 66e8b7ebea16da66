package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher performs single paced page retrievals through the configured
// HTTP client, which the caller pre-configures with the Tor SOCKS5
// proxy. The fetcher itself is proxy-agnostic; requiring an external
// client keeps proxy wiring in the tor package and makes tests trivial
// with httptest servers.
type Fetcher struct {
	// client is the HTTP client, already routed through the proxy.
	client *http.Client

	// marker is the domain substring that admits a location.
	marker string

	// delay is the pacing delay paid after every network attempt,
	// successful or not.
	delay time.Duration

	// userAgent is the identification header sent with each request.
	userAgent string

	// maxBodySize limits response body bytes read per page.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDomainMarker sets the substring a location must contain to be
// fetched.
func WithDomainMarker(marker string) FetcherOption {
	return func(f *Fetcher) {
		f.marker = marker
	}
}

// WithDelay sets the pacing delay applied after every fetch attempt.
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		marker:      ".onion",
		delay:       2 * time.Second,
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves one location and parses the body into a document.
//
// Admission runs first and costs nothing: locations without an
// http/https scheme return ErrInvalidScheme, locations not containing
// the domain marker return ErrDomainNotAllowed, and neither touches
// the network or pays the pacing delay.
//
// Once a request is issued the pacing delay is paid after the attempt
// whether it succeeded or failed. A service that refuses connections
// must not be hammered faster than one that answers.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*goquery.Document, error) {
	lower := strings.ToLower(location)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		f.logger.Warn("skipping location with invalid scheme", "url", location)
		return nil, ErrInvalidScheme
	}
	if !strings.Contains(location, f.marker) {
		f.logger.Warn("skipping off-target location", "url", location, "marker", f.marker)
		return nil, ErrDomainNotAllowed
	}

	defer f.pace(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("fetch failed", "url", location, "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("fetch returned bad status", "url", location, "status", resp.StatusCode)
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	body := io.LimitReader(resp.Body, f.maxBodySize)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page body: %w", err)
	}

	return doc, nil
}

// pace blocks for the configured delay, or until the context is
// cancelled. Cancellation cuts the wait short so a stopped crawl does
// not linger through one last sleep.
func (f *Fetcher) pace(ctx context.Context) {
	if f.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(f.delay):
	}
}
