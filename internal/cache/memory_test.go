package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/internal/clockutil"
)

func TestMemoryTTLExpiry(t *testing.T) {
	clock := clockutil.NewFake(time.Unix(0, 0))
	m := NewMemory[string](time.Minute).WithClock(clock)

	m.Insert("key", "value")

	v, ok := m.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	clock.Advance(59 * time.Second)
	_, ok = m.Get("key")
	assert.True(t, ok, "entry should still be fresh just under the TTL")

	clock.Advance(2 * time.Second)
	_, ok = m.Get("key")
	assert.False(t, ok, "entry should report a miss once past the TTL")
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	clock := clockutil.NewFake(time.Unix(0, 0))
	m := NewMemory[int](0).WithClock(clock)
	m.Insert("key", 42)

	clock.Advance(365 * 24 * time.Hour)
	v, ok := m.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestMemoryStatsHitRate(t *testing.T) {
	m := NewMemory[string](time.Hour)
	m.Insert("a", "1")

	m.Get("a") // hit
	m.Get("a") // hit
	m.Get("missing") // miss

	snap := m.Stats().Snapshot()
	assert.EqualValues(t, 2, snap.Hits)
	assert.EqualValues(t, 1, snap.Misses)
	assert.InDelta(t, float64(2)/3*100, snap.HitRate(), 0.01)
}

func TestMemoryClearResetsEntriesNotHitCounters(t *testing.T) {
	m := NewMemory[string](time.Hour)
	m.Insert("a", "1")
	m.Get("a")
	m.Get("missing")

	m.Clear()

	_, ok := m.Get("a")
	assert.False(t, ok, "cleared entry should no longer be present")

	snap := m.Stats().Snapshot()
	assert.EqualValues(t, 0, snap.Entries)
	assert.EqualValues(t, 1, snap.Hits, "hit counter survives Clear per ownership lifecycle")
}
