package export

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/onionharvest/internal/model"
)

// MarkdownWriter outputs sessions in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid diagrams for the tag distribution chart
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the session in Markdown format.
func (w *MarkdownWriter) Write(session *model.Session) (int, error) {
	md := markdown.NewMarkdown(w.output)
	stats := model.NewStats(session.Records)

	w.writeHeader(md, session, stats)
	w.writeStats(md, stats)
	w.writeRecords(md, session.Records)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the session summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, session *model.Session, stats model.Stats) {
	md.H1("Crawl Report")
	md.PlainText("")

	query := session.Query
	if query == "" {
		query = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", query},
			{"Seeds", strconv.Itoa(len(session.Seeds))},
			{"Pages Visited", strconv.Itoa(session.PagesVisited)},
			{"Records", strconv.Itoa(stats.TotalRecords)},
			{"Started", session.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", session.FinishedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

// writeStats writes the statistics section with a tag distribution chart.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, stats model.Stats) {
	md.H2("Statistics")
	md.PlainText("")

	if stats.TotalRecords == 0 {
		md.PlainText("No records were extracted.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total records", strconv.Itoa(stats.TotalRecords)},
			{"Records with a link", strconv.Itoa(stats.RecordsWithLink)},
			{"Average text length", strconv.FormatFloat(stats.AverageTextLength, 'f', 1, 64)},
			{"Distinct sources", strconv.Itoa(len(stats.BySource))},
		},
	})
	md.PlainText("")

	w.writeTagChart(md, stats)
}

// writeTagChart writes a mermaid pie chart of the tag distribution.
func (w *MarkdownWriter) writeTagChart(md *markdown.Markdown, stats model.Stats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Records by Element Tag"),
		piechart.WithShowData(true),
	)

	// Map iteration order is random; sort the tags so the chart is
	// stable across runs.
	tags := make([]string, 0, len(stats.ByTag))
	for tag := range stats.ByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		chart.LabelAndIntValue(tag, uint64(stats.ByTag[tag]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRecords writes the extracted records table.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, records []model.Record) {
	md.H2("Records")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No records were extracted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		link := r.Link
		if link == "" {
			link = "-"
		}
		rows[i] = []string{
			truncateString(r.Text, 80),
			truncateString(link, 50),
			r.Tag,
			truncateString(r.Source, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Text", "Link", "Tag", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [onionharvest](https://github.com/nao1215/onionharvest)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
