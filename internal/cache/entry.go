package cache

import (
	"encoding/json"
	"time"
)

// Entry is the self-describing envelope persisted per key: a value plus
// the two wall-clock timestamps spec §3 requires. Legacy bare-value disk
// files (pre-envelope format) are still loadable — see Disk.Load.
type Entry[T any] struct {
	Value        T         `json:"value"`
	StoredAt     time.Time `json:"stored_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

// envelopeMarker lets Disk.Load tell envelope JSON apart from a bare value:
// a legacy bare value will almost never happen to unmarshal into this
// shape successfully for our value types (structs/slices), so we try the
// envelope first and fall back to the bare value on failure.
type envelopeMarker struct {
	StoredAt *time.Time `json:"stored_at"`
}

func looksLikeEnvelope(raw []byte) bool {
	var m envelopeMarker
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return m.StoredAt != nil
}
