package model

import "time"

// Severity classifies a progress notification line.
type Severity int

// Severity levels, ordered from least to most severe.
const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// String returns the upper-case label used when rendering log lines.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Notification is one progress line emitted by the crawl worker.
// The engine posts notifications at crawl start, per discovered seed,
// per visited location, on errors, and at completion. Delivery is
// one-way: the consumer renders the line and never writes back.
type Notification struct {
	// Time is when the event occurred.
	Time time.Time

	// Severity classifies the line.
	Severity Severity

	// Message is the free-text line.
	Message string
}

// NewNotification creates a notification stamped with the current time.
func NewNotification(severity Severity, message string) Notification {
	return Notification{
		Time:     time.Now(),
		Severity: severity,
		Message:  message,
	}
}
