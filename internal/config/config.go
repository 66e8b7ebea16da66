package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The crawl limits mirror the behavior of
// small research crawls over Tor: conservative pacing and tight caps.
const (
	// DefaultProxyAddress is the standard Tor SOCKS5 proxy address.
	// 127.0.0.1 instead of localhost avoids DNS resolution overhead
	// and IPv6 ambiguity on some systems.
	DefaultProxyAddress = "127.0.0.1:9050"

	// DefaultFetchTimeout is the per-request timeout for page fetches.
	// Tor adds several relay hops of latency, so this is much higher
	// than a clearnet crawler would use.
	DefaultFetchTimeout = 25 * time.Second

	// DefaultSearchTimeout is the timeout for the clearnet directory
	// search request. The directory is reached without Tor, so a
	// shorter timeout is appropriate.
	DefaultSearchTimeout = 15 * time.Second

	// DefaultDelay is the pacing delay applied after every fetch and
	// directory search, successful or not. Politeness toward hidden
	// services matters more than crawl speed.
	DefaultDelay = 2 * time.Second

	// DefaultMaxItemsPerPage caps the records extracted from one page.
	DefaultMaxItemsPerPage = 20

	// DefaultMaxDepth limits link-following from the seeds.
	// Depth 0 crawls only the seeds themselves.
	DefaultMaxDepth = 1

	// MaxCrawlDepth is the upper bound accepted for MaxDepth. Onion
	// services interlink densely; beyond a few levels the frontier
	// explodes without adding relevant content.
	MaxCrawlDepth = 3

	// DefaultMaxPages caps the total frontier entries processed in one
	// crawl, counting failed fetches.
	DefaultMaxPages = 30

	// DefaultSeedLimit caps the number of seed locations taken from a
	// directory search.
	DefaultSeedLimit = 10

	// DefaultDomainMarker admits a location as crawlable when its
	// string form contains this substring.
	DefaultDomainMarker = ".onion"

	// DefaultSearchEndpoint is the clearnet search page of the Ahmia
	// onion directory. The search request is deliberately unproxied:
	// Ahmia is a clearnet service and the query reveals nothing about
	// which onion services are later visited through Tor.
	DefaultSearchEndpoint = "https://ahmia.fi/search/"

	// DefaultUserAgent is a browser-like identification header.
	// Some onion services refuse obviously non-browser clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits the response body bytes read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout bounds embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is used for XDG directory paths.
	AppName = "onionharvest"
)

// Config holds all options for one crawl invocation.
type Config struct {
	// Query is the free-text directory search query used to discover
	// seed locations. Required unless Seeds is set.
	Query string

	// Seeds are explicit starting locations. When set, the directory
	// search is skipped.
	Seeds []string

	// Keywords filters extracted text: a record is kept only if at
	// least one keyword appears in it (case-insensitive substring).
	// Empty means no keyword filtering.
	Keywords []string

	// Selectors are CSS selector extraction rules, evaluated in order;
	// the first selector matching any element wins. Empty means the
	// default tag-based extraction.
	Selectors []string

	// ProxyAddress is the Tor SOCKS5 proxy in "host:port" format.
	// All page fetches route through it; the directory search does not.
	ProxyAddress string

	// UseEmbeddedTor starts an in-process Tor daemon instead of
	// expecting an external proxy at ProxyAddress.
	UseEmbeddedTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// FetchTimeout is the per-request timeout for page fetches.
	FetchTimeout time.Duration

	// SearchTimeout is the timeout for the directory search request.
	SearchTimeout time.Duration

	// Delay is the pacing delay paid after every fetch and search
	// attempt, including failed ones.
	Delay time.Duration

	// MaxItemsPerPage caps the records extracted from a single page.
	MaxItemsPerPage int

	// MaxTotalItems caps the overall result collection. Zero means
	// "same as MaxItemsPerPage", which reproduces the historical
	// behavior where one limit served both roles.
	MaxTotalItems int

	// MaxDepth limits link-following depth; 0 crawls only the seeds.
	MaxDepth int

	// MaxPages caps the total frontier entries processed.
	MaxPages int

	// SeedLimit caps seed locations taken from a directory search.
	SeedLimit int

	// DomainMarker is the substring that admits a location.
	DomainMarker string

	// SearchEndpoint is the directory search page URL.
	SearchEndpoint string

	// UserAgent identifies page fetches.
	UserAgent string

	// MaxBodySize limits response body bytes read per page.
	MaxBodySize int64

	// DBDir is the directory of the crawl history database. Empty
	// disables persistence.
	DBDir string

	// OutputFile is where exported records are written. Empty writes
	// to stdout.
	OutputFile string

	// Format selects the export format: "json", "csv", or "markdown".
	Format string

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config with all defaults applied.
// Many defaults are non-zero, so relying on zero values is not an
// option; this constructor doubles as their documentation.
func NewConfig() *Config {
	return &Config{
		ProxyAddress:      DefaultProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		FetchTimeout:      DefaultFetchTimeout,
		SearchTimeout:     DefaultSearchTimeout,
		Delay:             DefaultDelay,
		MaxItemsPerPage:   DefaultMaxItemsPerPage,
		MaxDepth:          DefaultMaxDepth,
		MaxPages:          DefaultMaxPages,
		SeedLimit:         DefaultSeedLimit,
		DomainMarker:      DefaultDomainMarker,
		SearchEndpoint:    DefaultSearchEndpoint,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		Format:            "json",
	}
}

// TotalItemCap returns the overall result cap: MaxTotalItems when set,
// otherwise MaxItemsPerPage.
func (c *Config) TotalItemCap() int {
	if c.MaxTotalItems > 0 {
		return c.MaxTotalItems
	}
	return c.MaxItemsPerPage
}

// XDGDataDir returns the XDG data directory for onionharvest
// (~/.local/share/onionharvest on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for onionharvest.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration, returning the first problem found
// as a sentinel error. Fixing one problem often changes the rest, so
// collecting all errors is not worth the complexity.
func (c *Config) Validate() error {
	if c.Query == "" && len(c.Seeds) == 0 {
		return ErrNoQuery
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.MaxItemsPerPage < 1 {
		return ErrInvalidMaxItems
	}

	if c.MaxTotalItems < 0 {
		return ErrInvalidMaxItems
	}

	if c.MaxDepth < 0 || c.MaxDepth > MaxCrawlDepth {
		return ErrInvalidDepth
	}

	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.SeedLimit < 1 {
		return ErrInvalidSeedLimit
	}

	if c.FetchTimeout <= 0 || c.SearchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Format {
	case "json", "csv", "markdown":
	default:
		return ErrInvalidFormat
	}

	return nil
}
