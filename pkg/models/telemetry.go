package models

import "time"

// TelemetryEntry records one tool invocation: timing, success, and (on
// success) handler-supplied metadata, or (on failure) the error string.
// The executor records them into state.State, which keeps the most recent
// 200 in a ring.
type TelemetryEntry struct {
	Tool      string         `json:"tool"`
	Timestamp time.Time      `json:"timestamp"`
	LatencyMS int64          `json:"latency_ms"`
	Success   bool           `json:"success"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// SearchQueryLogEntry records one search for the recent-query ring kept
// for operator visibility; "more" continuation reads DiscoverySnapshot,
// not this log.
type SearchQueryLogEntry struct {
	Technology string    `json:"technology,omitempty"`
	Scope      string    `json:"scope"`
	Query      string    `json:"query"`
	Matches    int       `json:"matches"`
	Timestamp  time.Time `json:"timestamp"`
}

// DiscoverySnapshot remembers a query and a technology list, so a bare
// "more" query can page through the list without the caller having to
// repeat the original query string. Only State.StoreDiscovery sets it: the
// query handler pages through and advances a stored snapshot, but no
// search in this repository records one.
type DiscoverySnapshot struct {
	Query        string       `json:"query"`
	Technologies []Technology `json:"technologies"`
	Offset       int          `json:"offset"`
}
