// Package export provides session output functionality.
//
// This package contains writers for different output formats:
//   - CSVWriter: Spreadsheet-friendly record rows
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Human-readable summary for documentation and sharing
//
// Design decision: We separate exporting from the session data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package export
