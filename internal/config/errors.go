package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Package-level sentinel errors allow errors.Is checks in callers
// while keeping the messages human-readable.
var (
	// ErrNoQuery is returned when neither a search query nor explicit
	// seed locations are provided. Without one of the two there is
	// nothing to crawl.
	ErrNoQuery = errors.New("no query or seeds specified: provide search words or --seeds")

	// ErrInvalidDelay is returned when the pacing delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxItems is returned when an item cap is not positive.
	ErrInvalidMaxItems = errors.New("invalid max items: must be at least 1")

	// ErrInvalidDepth is returned when the crawl depth is outside 0..3.
	ErrInvalidDepth = errors.New("invalid depth: must be between 0 and 3")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be at least 1")

	// ErrInvalidSeedLimit is returned when the seed cap is not positive.
	ErrInvalidSeedLimit = errors.New("invalid seed limit: must be at least 1")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is
	// negative; zero means the default.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidFormat is returned for unknown export formats.
	ErrInvalidFormat = errors.New("invalid format: must be json, csv, or markdown")

	// ErrProfileNotFound is returned when an explicitly requested
	// profile file does not exist.
	ErrProfileNotFound = errors.New("profile file not found")
)
