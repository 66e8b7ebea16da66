package config

import "strings"

// ParseKeywords splits a comma-separated keyword list, trimming
// whitespace and dropping empty entries. Returns nil for input with no
// usable keywords so callers can treat "no filter" uniformly.
func ParseKeywords(input string) []string {
	var keywords []string
	for _, part := range strings.Split(input, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// ParseSelectors splits a newline-separated CSS selector list.
// Blank lines and lines starting with "#" are ignored, so selector
// files can carry comments. Order is preserved: selectors are
// extraction rules evaluated first-match-wins.
func ParseSelectors(input string) []string {
	var selectors []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		selectors = append(selectors, line)
	}
	return selectors
}
