package crawler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// schemeHostPattern captures the scheme and host prefix of a location,
// used to resolve root-relative references.
var schemeHostPattern = regexp.MustCompile(`^(https?://[^/]+)`)

// ExtractLinks scans a parsed document for anchor references matching
// the domain marker and returns them deduplicated, in sorted order.
//
// Only two reference shapes are kept: references that are already
// absolute (they start with a scheme) are taken as-is, and
// root-relative references (they start with "/") are prefixed with the
// scheme+host captured from baseLocation. Path-relative references are
// dropped. That is a known limitation inherited from the original
// tool, preserved because it is observable crawl behavior.
func ExtractLinks(doc *goquery.Document, baseLocation, marker string) []string {
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.Contains(href, marker) {
			return
		}

		switch {
		case strings.HasPrefix(href, "http"):
			seen[href] = struct{}{}
		case strings.HasPrefix(href, "/"):
			if host := schemeHostPattern.FindString(baseLocation); host != "" {
				seen[host+href] = struct{}{}
			}
		}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	// The set has no meaningful order; sorting makes crawls
	// reproducible against a deterministic network.
	sort.Strings(links)
	return links
}
