package crawler

import (
	"errors"
	"fmt"
)

// Admission errors returned by Fetcher.Fetch before any network I/O.
// Both mean "skip this one location and continue the crawl"; neither
// is ever fatal to a run.
var (
	// ErrInvalidScheme is returned for locations that are not
	// HTTP-family URLs. Only http and https are fetchable.
	ErrInvalidScheme = errors.New("invalid scheme: only http and https are allowed")

	// ErrDomainNotAllowed is returned for locations whose string form
	// does not contain the configured domain marker. The check happens
	// before any network call so off-target locations never leave the
	// process.
	ErrDomainNotAllowed = errors.New("location does not match the domain marker")
)

// TransportError reports a failed network retrieval: connection errors,
// timeouts, and non-2xx responses. The crawl engine treats it as a
// skip, never an abort.
type TransportError struct {
	// StatusCode is the HTTP status when a response was received,
	// zero when the failure happened below HTTP.
	StatusCode int

	// Err is the underlying cause, nil for plain bad-status failures.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error: unexpected status %d", e.StatusCode)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *TransportError) Unwrap() error {
	return e.Err
}
