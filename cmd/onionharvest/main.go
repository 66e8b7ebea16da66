// Package main provides the entry point for the onionharvest CLI.
//
// onionharvest is a bounded, polite crawler for Tor hidden services
// (.onion addresses). It discovers seed pages through a clearnet onion
// directory, crawls them breadth-first through a Tor SOCKS5 proxy, and
// extracts text content with CSS selector rules.
//
// Usage:
//
//	onionharvest crawl "hidden wiki"
//	onionharvest crawl --seed http://example.onion/
//	onionharvest history
//
// See --help for all available options.
package main

// main is the entry point for onionharvest.
func main() {
	Execute()
}
