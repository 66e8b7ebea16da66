package model

import "unicode/utf8"

// MaxRecordTextLength is the maximum length of a record's text in runes.
// Longer element text is truncated at extraction time. The limit keeps
// records table-friendly and bounds memory on pages with very large
// text blocks.
const MaxRecordTextLength = 500

// MinRecordTextLength is the minimum length of element text worth
// recording. Shorter fragments are almost always navigation labels,
// separators, or decorative markup rather than content.
const MinRecordTextLength = 20

// Record is one extracted content unit from a crawled page.
//
// Records are immutable once created: the extractor builds them fully
// populated and the engine only appends them to its result collection.
// JSON keys are lower-case to match the export contract consumed by
// external tooling.
type Record struct {
	// Text is the trimmed visible text of the element,
	// truncated to MaxRecordTextLength runes.
	Text string `json:"text"`

	// Link is the href of an anchor nested in the element, or of the
	// nearest enclosing anchor. Empty when the element has no
	// associated link.
	Link string `json:"link"`

	// Tag is the HTML tag name of the element the text came from.
	Tag string `json:"tag"`

	// Source is the absolute location of the page the record was
	// extracted from.
	Source string `json:"source"`
}

// TruncateText truncates a string to at most MaxRecordTextLength runes.
// Truncation is rune-aware so multi-byte UTF-8 text is never cut in the
// middle of a character.
func TruncateText(s string) string {
	if utf8.RuneCountInString(s) <= MaxRecordTextLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxRecordTextLength])
}
