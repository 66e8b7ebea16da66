package crawler

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/onionharvest/internal/model"
)

// defaultTagSelector is the fallback element set scanned when no
// extraction rule matches: paragraphs, generic blocks, inline spans,
// the top two heading levels, and list items, in document order.
const defaultTagSelector = "p, div, span, h1, h2, li"

// errNoTagName reports an element node without a resolvable tag name.
// It should not happen on parser output; when it does, the element is
// skipped and logged rather than aborting the page.
var errNoTagName = errors.New("element has no tag name")

// ContentExtractor applies extraction rules to parsed documents and
// produces records.
//
// Rules are CSS selectors evaluated in order; the first rule matching
// at least one element claims the page and later rules are never
// evaluated. A rule that fails to compile simply matches nothing and
// falls through to the next one. With no rules, or none matching, the
// default tag set is scanned instead.
type ContentExtractor struct {
	// rules are the ordered extraction selectors.
	rules []string

	// keywords filter candidate text: at least one must appear
	// (case-insensitive substring). Empty means keep everything.
	keywords []string

	// maxItems caps candidate elements taken from one page.
	maxItems int

	// logger for structured logging.
	logger *slog.Logger
}

// ContentExtractorOption configures a ContentExtractor.
type ContentExtractorOption func(*ContentExtractor)

// WithRules sets the ordered extraction selectors.
func WithRules(rules []string) ContentExtractorOption {
	return func(e *ContentExtractor) {
		e.rules = rules
	}
}

// WithKeywords sets the keyword filter.
func WithKeywords(keywords []string) ContentExtractorOption {
	return func(e *ContentExtractor) {
		e.keywords = keywords
	}
}

// WithMaxItems sets the per-page candidate element cap.
func WithMaxItems(n int) ContentExtractorOption {
	return func(e *ContentExtractor) {
		e.maxItems = n
	}
}

// WithContentLogger sets a custom logger.
func WithContentLogger(logger *slog.Logger) ContentExtractorOption {
	return func(e *ContentExtractor) {
		e.logger = logger
	}
}

// NewContentExtractor creates a ContentExtractor.
func NewContentExtractor(opts ...ContentExtractorOption) *ContentExtractor {
	e := &ContentExtractor{
		maxItems: 20,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract applies the extraction rules to a document and returns the
// qualifying records, at most maxItems of them, in document order.
//
// The cap applies to candidate elements, not surviving records: a page
// can yield fewer records than maxItems when candidates are filtered
// out by length or keywords. A failure on one element is logged and
// skipped; the rest of the page is still extracted.
func (e *ContentExtractor) Extract(doc *goquery.Document, source string) []model.Record {
	candidates := e.selectCandidates(doc)

	records := make([]model.Record, 0, candidates.Length())
	candidates.Each(func(_ int, s *goquery.Selection) {
		record, ok, err := e.buildRecord(s, source)
		if err != nil {
			e.logger.Error("failed to extract element", "source", source, "error", err)
			return
		}
		if ok {
			records = append(records, record)
		}
	})

	return records
}

// selectCandidates picks the candidate elements for one page: the first
// rule with any match wins, otherwise the default tag set. The result
// is capped at maxItems elements.
func (e *ContentExtractor) selectCandidates(doc *goquery.Document) *goquery.Selection {
	for _, rule := range e.rules {
		if sel := doc.Find(rule); sel.Length() > 0 {
			return capSelection(sel, e.maxItems)
		}
	}
	return capSelection(doc.Find(defaultTagSelector), e.maxItems)
}

// capSelection limits a selection to its first n elements.
func capSelection(sel *goquery.Selection, n int) *goquery.Selection {
	if sel.Length() <= n {
		return sel
	}
	return sel.Slice(0, n)
}

// buildRecord converts one candidate element into a record.
// ok is false when the element is filtered out (too short, no keyword
// match); err is non-nil only for malformed elements.
func (e *ContentExtractor) buildRecord(s *goquery.Selection, source string) (model.Record, bool, error) {
	tag := goquery.NodeName(s)
	if tag == "" || strings.HasPrefix(tag, "#") {
		return model.Record{}, false, errNoTagName
	}

	text := strings.Join(strings.Fields(s.Text()), " ")
	if utf8.RuneCountInString(text) < model.MinRecordTextLength {
		return model.Record{}, false, nil
	}

	if len(e.keywords) > 0 && !containsAnyKeyword(text, e.keywords) {
		return model.Record{}, false, nil
	}

	return model.Record{
		Text:   model.TruncateText(text),
		Link:   associatedLink(s),
		Tag:    tag,
		Source: source,
	}, true, nil
}

// containsAnyKeyword reports whether any keyword appears in the text
// as a case-insensitive substring.
func containsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// associatedLink finds the link belonging to an element: a nested
// anchor wins, then the nearest enclosing anchor, then nothing.
func associatedLink(s *goquery.Selection) string {
	if href, ok := s.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	if href, ok := s.ParentsFiltered("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}
