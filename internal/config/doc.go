// Package config holds the crawl configuration and its defaults.
//
// Config is a single flat struct populated from CLI flags and an
// optional YAML profile file, then passed through the application by
// dependency injection; there is no global configuration state.
// Validate is called once after flag parsing so misconfiguration fails
// fast with a specific sentinel error.
//
// The package also parses the two free-form user inputs the crawler
// accepts: a comma-separated keyword list and a newline-separated CSS
// selector list where blank lines and "#" comment lines are ignored.
package config
