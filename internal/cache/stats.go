// Package cache implements the two-tier cache in front of every outbound
// fetch: an in-memory TTL map (Memory) and an on-disk LRU with a byte
// budget (Disk), both backed by the same Stats counters.
package cache

import "sync/atomic"

// Stats is a thread-safe set of monotone counters with atomic snapshots.
// Mutators use relaxed atomic adds; Snapshot loads each counter once so the
// derived metrics (hit rate, avg bytes per hit) are computed from a single
// consistent view rather than from atomics read piecewise.
type Stats struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	bytes      atomic.Uint64
	entries    atomic.Int64
	evictions  atomic.Uint64
}

// Snapshot is an immutable point-in-time view of Stats.
type Snapshot struct {
	Hits      uint64
	Misses    uint64
	Bytes     uint64
	Entries   int64
	Evictions uint64
}

func (s *Stats) RecordHit()          { s.hits.Add(1) }
func (s *Stats) RecordMiss()         { s.misses.Add(1) }
func (s *Stats) RecordBytes(n int)   { s.bytes.Add(uint64(n)) }
func (s *Stats) SetEntryCount(n int) { s.entries.Store(int64(n)) }
func (s *Stats) IncrementEntries()   { s.entries.Add(1) }
func (s *Stats) DecrementEntries(n int) {
	if n <= 0 {
		return
	}
	s.entries.Add(-int64(n))
}
func (s *Stats) RecordEviction(n int) {
	if n <= 0 {
		return
	}
	s.evictions.Add(uint64(n))
}

// Snapshot returns a consistent view of all counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Bytes:     s.bytes.Load(),
		Entries:   s.entries.Load(),
		Evictions: s.evictions.Load(),
	}
}

// Reset zeroes every counter. Used by tests; not exercised by production
// request handling (clearing the memory cache does not reset statistics,
// per spec §3's ownership lifecycle).
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.bytes.Store(0)
	s.entries.Store(0)
	s.evictions.Store(0)
}

// HitRate returns the percentage of requests that hit, 0 when no requests
// have been recorded yet.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// AvgBytesPerHit returns 0 when there have been no hits.
func (s Snapshot) AvgBytesPerHit() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.Bytes) / float64(s.Hits)
}

// TotalRequests is Hits+Misses.
func (s Snapshot) TotalRequests() uint64 { return s.Hits + s.Misses }

// Combine sums two snapshots field-wise, used to report memory+disk as one
// combined view.
func Combine(a, b Snapshot) Snapshot {
	return Snapshot{
		Hits:      a.Hits + b.Hits,
		Misses:    a.Misses + b.Misses,
		Bytes:     a.Bytes + b.Bytes,
		Entries:   a.Entries + b.Entries,
		Evictions: a.Evictions + b.Evictions,
	}
}
