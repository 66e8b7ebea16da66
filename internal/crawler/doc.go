// Package crawler implements the bounded breadth-first crawl over onion
// services.
//
// # Components
//
//   - Fetcher: admission checks plus one paced, proxied page retrieval
//   - ExtractLinks: marker-filtered link discovery from a parsed page
//   - ContentExtractor: selector-rule content extraction with a
//     tag-based fallback
//   - Engine: the frontier/visited-set traversal loop that drives the
//     other three
//
// The engine is strictly sequential: one fetch in flight at a time,
// with a politeness delay after every attempt. Callers that need a
// responsive control thread run Engine.Run on its own goroutine and
// consume the progress notification channel; all crawl state stays
// confined to that single goroutine, so the engine needs no locks.
//
// # Politeness
//
// The crawler paces every request, bounds total pages and depth, and
// reads bounded response bodies. It does not fetch robots.txt; the
// original tool never did, and the limitation is inherited knowingly
// rather than silently patched.
package crawler
