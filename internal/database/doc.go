// Package database provides SQLite-based persistence for crawl history.
//
// Each completed crawl session is stored as a run row plus one row per
// extracted record, so past harvests can be listed and re-exported
// without re-crawling.
package database
