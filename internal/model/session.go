package model

import "time"

// Session holds the inputs and accumulated outputs of one crawl run.
// It is the unit passed through the pipeline steps and persisted to the
// history database.
//
// A Session is owned by the crawl worker while the run is active.
// The controlling context must only read it after the worker signals
// completion; cross-context progress reporting uses Notification
// messages instead of shared access.
type Session struct {
	// Query is the free-text directory search query that produced the
	// seed list. Empty when seeds were supplied explicitly.
	Query string `json:"query,omitempty"`

	// Seeds are the starting locations of the crawl.
	Seeds []string `json:"seeds"`

	// Records are the extracted content units in visitation order.
	Records []Record `json:"records"`

	// PagesVisited is the number of frontier entries processed,
	// counting failed fetches.
	PagesVisited int `json:"pages_visited"`

	// StartedAt and FinishedAt bound the crawl run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Stats summarizes a record collection. It backs the statistics view
// of the Markdown report.
type Stats struct {
	// TotalRecords is the number of records in the collection.
	TotalRecords int

	// RecordsWithLink is the number of records carrying a non-empty link.
	RecordsWithLink int

	// AverageTextLength is the mean text length in runes, zero when
	// the collection is empty.
	AverageTextLength float64

	// ByTag counts records per HTML tag name.
	ByTag map[string]int

	// BySource counts records per source location.
	BySource map[string]int
}

// NewStats computes statistics over a record collection.
func NewStats(records []Record) Stats {
	stats := Stats{
		TotalRecords: len(records),
		ByTag:        make(map[string]int),
		BySource:     make(map[string]int),
	}

	var totalLength int
	for _, r := range records {
		stats.ByTag[r.Tag]++
		stats.BySource[r.Source]++
		if r.Link != "" {
			stats.RecordsWithLink++
		}
		totalLength += len([]rune(r.Text))
	}

	if len(records) > 0 {
		stats.AverageTextLength = float64(totalLength) / float64(len(records))
	}

	return stats
}
