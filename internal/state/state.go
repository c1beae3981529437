// Package state holds the process-wide state container (spec §3's
// "Ownership lifecycle", §5's "Shared resources", §9's "Global mutable
// state" note): active provider/technology, per-technology index caches,
// the expanded-identifier set, and the telemetry/recent-query rings.
//
// It is explicitly constructed at startup and passed by reference to every
// handler, never a package-level singleton, so tests can build a fresh
// container per test (spec §9).
package state

import (
	"sync"

	"docsmcp/pkg/models"
)

const telemetryRingSize = 200
const queryLogRingSize = 100

// State is the process-wide container. Reads take a shared lock; writes
// take an exclusive lock. Holders must not perform HTTP I/O while holding
// the write lock (spec §5) — copy out, unlock, fetch, then re-lock to
// store.
type State struct {
	mu sync.RWMutex

	activeProvider   models.Provider
	activeTechnology string // technology ID, empty if none selected

	// frameworkIndex[technologyID] is the tokenized reference list for
	// that technology; built lazily, invalidated on technology reselect.
	frameworkIndex map[string][]models.Reference

	// expanded tracks identifiers already folded into an index via
	// identifier expansion (spec §4.6), so each expands at most once.
	expanded map[string]struct{}

	discovery *models.DiscoverySnapshot

	telemetry []models.TelemetryEntry
	queryLog  []models.SearchQueryLogEntry
}

// New constructs an empty state container.
func New() *State {
	return &State{
		frameworkIndex: make(map[string][]models.Reference),
		expanded:       make(map[string]struct{}),
	}
}

// ActiveProvider returns the currently selected provider, or "" if none.
func (s *State) ActiveProvider() models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProvider
}

// SetActiveProvider selects a provider. It does not touch the active
// technology; callers typically also call SetActiveTechnology.
func (s *State) SetActiveProvider(p models.Provider) {
	s.mu.Lock()
	s.activeProvider = p
	s.mu.Unlock()
}

// ActiveTechnology returns the currently selected technology ID, or "".
func (s *State) ActiveTechnology() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTechnology
}

// SetActiveTechnology reselects the active technology, invalidating that
// technology's cached framework index (spec §3: "Reselecting a technology
// invalidates that technology's framework cache and framework index").
// Note this invalidates the NEW technology's cache too, the same way the
// source treats every reselect — including reselecting the same ID — as a
// fresh start: State machine Built -> Empty (spec §4.7).
func (s *State) SetActiveTechnology(technologyID string) {
	s.mu.Lock()
	s.activeTechnology = technologyID
	delete(s.frameworkIndex, technologyID)
	s.mu.Unlock()
}

// FrameworkIndex returns the cached index for technologyID, if built.
func (s *State) FrameworkIndex(technologyID string) ([]models.Reference, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.frameworkIndex[technologyID]
	return idx, ok
}

// StoreFrameworkIndex publishes a freshly built index for technologyID.
func (s *State) StoreFrameworkIndex(technologyID string, refs []models.Reference) {
	s.mu.Lock()
	s.frameworkIndex[technologyID] = refs
	s.mu.Unlock()
}

// MarkExpanded records that identifier has been folded into its owning
// index, returning true if this is the first time (caller should expand);
// false if it was already expanded (caller should skip).
func (s *State) MarkExpanded(identifier string) (firstTime bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[identifier]; ok {
		return false
	}
	s.expanded[identifier] = struct{}{}
	return true
}

// Discovery returns the last discovery snapshot, if any.
func (s *State) Discovery() (models.DiscoverySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.discovery == nil {
		return models.DiscoverySnapshot{}, false
	}
	return *s.discovery, true
}

// StoreDiscovery replaces the discovery snapshot.
func (s *State) StoreDiscovery(snap models.DiscoverySnapshot) {
	s.mu.Lock()
	s.discovery = &snap
	s.mu.Unlock()
}

// RecordTelemetry appends an entry to the telemetry ring, trimming to the
// most recent 200 (spec §3/§5).
func (s *State) RecordTelemetry(entry models.TelemetryEntry) {
	s.mu.Lock()
	s.telemetry = append(s.telemetry, entry)
	if len(s.telemetry) > telemetryRingSize {
		s.telemetry = s.telemetry[len(s.telemetry)-telemetryRingSize:]
	}
	s.mu.Unlock()
}

// Telemetry returns a copy of the current telemetry ring.
func (s *State) Telemetry() []models.TelemetryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TelemetryEntry, len(s.telemetry))
	copy(out, s.telemetry)
	return out
}

// RecordQuery appends an entry to the recent-query ring.
func (s *State) RecordQuery(entry models.SearchQueryLogEntry) {
	s.mu.Lock()
	s.queryLog = append(s.queryLog, entry)
	if len(s.queryLog) > queryLogRingSize {
		s.queryLog = s.queryLog[len(s.queryLog)-queryLogRingSize:]
	}
	s.mu.Unlock()
}

// RecentQueries returns a copy of the current query-log ring.
func (s *State) RecentQueries() []models.SearchQueryLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SearchQueryLogEntry, len(s.queryLog))
	copy(out, s.queryLog)
	return out
}
