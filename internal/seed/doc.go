// Package seed discovers crawl seed URLs from a clearnet hidden-service
// directory. The directory is searched over the regular internet, not
// through the Tor proxy, so seeding works before a Tor circuit exists.
package seed
