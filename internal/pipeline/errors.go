package pipeline

import "errors"

// Sentinel errors for pipeline steps.
var (
	// ErrNoSeeds is returned when neither explicit seeds nor a directory
	// search produced any starting location.
	ErrNoSeeds = errors.New("no crawl seeds available")

	// ErrCrawlFailed is returned when the crawl engine ended in a
	// failed state instead of completing or being stopped.
	ErrCrawlFailed = errors.New("crawl engine failed")
)
