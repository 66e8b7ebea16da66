// Package log provides the structured logger used across onionharvest,
// built on the standard slog package with automatic sanitization of
// sensitive attribute values.
//
// A crawler that walks onion services logs URLs, headers, and page
// fragments, any of which can carry session cookies, tokens, or hidden
// service keys. The SanitizingHandler masks such values before they
// reach the underlying handler, so even verbose logs are safe to share.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("fetched page",
//	    "url", "http://example.onion/",
//	    "cookie", "session=abc123", // masked in output
//	)
//
// Loggers are injected into components; nothing in this module mutates
// the process-global default logger except the CLI entry point.
package log
