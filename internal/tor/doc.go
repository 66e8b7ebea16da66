// Package tor provides Tor network connectivity for the crawler.
//
// The Client wraps a SOCKS5 dialer (golang.org/x/net/proxy) pointed at a
// Tor daemon and builds http.Clients whose requests are routed through
// it. CheckConnection performs a real SOCKS5 handshake to verify the
// configured address is actually a Tor-style proxy before a crawl
// starts, which turns "every fetch times out" into one clear error.
//
// EmbeddedTor optionally launches a Tor daemon in-process via
// nao1215/tornago for environments without a running Tor service.
//
// The package also validates onion addresses: v3 addresses are checked
// against their embedded SHA3-256 checksum, and deprecated v2 addresses
// are detected so the caller can warn about them.
package tor
