// Package model defines the data types shared across onionharvest.
//
// The central type is Record, one extracted content unit from a crawled
// page. Session aggregates the records and statistics of a single crawl
// run, and Notification carries progress lines from the crawl worker to
// the controlling context.
//
// Types in this package are plain data carriers with no behavior beyond
// normalization helpers. They have no dependencies on other internal
// packages so that every layer (crawler, export, database) can share them
// without import cycles.
package model
