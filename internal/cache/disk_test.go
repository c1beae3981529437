package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/internal/clockutil"
)

func TestDiskStoreAndLoadRoundTrip(t *testing.T) {
	d := NewDisk[string](t.TempDir(), 1<<20)

	require.NoError(t, d.Store("key.json", "hello"))

	entry, ok, err := d.Load("key.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", entry.Value)
	assert.False(t, entry.StoredAt.IsZero())
}

func TestDiskLoadMissingFileIsMissNotError(t *testing.T) {
	d := NewDisk[string](t.TempDir(), 1<<20)

	_, ok, err := d.Load("absent.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskLegacyBareValueFallback(t *testing.T) {
	dir := t.TempDir()
	d := NewDisk[string](dir, 1<<20)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(`"bare-value"`), 0o644))

	entry, ok, err := d.Load("legacy.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bare-value", entry.Value)
	assert.True(t, entry.StoredAt.Equal(time.Unix(0, 0)))
}

func TestDiskEvictsOldestByModTimeWhenOverBudget(t *testing.T) {
	dir := t.TempDir()
	clock := clockutil.NewFake(time.Unix(0, 0))
	// Budget smaller than any single envelope, so every store after the
	// first evicts all older files and keeps only the newest.
	d := NewDisk[string](dir, 40).WithClock(clock)

	require.NoError(t, d.Store("a.json", "aaaaaaaaaaaaaaaaaaaa"))
	clock.Advance(time.Second)
	require.NoError(t, d.Store("b.json", "bbbbbbbbbbbbbbbbbbbb"))
	clock.Advance(time.Second)
	require.NoError(t, d.Store("c.json", "cccccccccccccccccccc"))

	_, aStillThere, _ := d.Load("a.json")
	_, bStillThere, _ := d.Load("b.json")
	_, cStillThere, _ := d.Load("c.json")

	assert.False(t, aStillThere, "oldest entry should have been evicted")
	assert.True(t, cStillThere, "most recently stored entry is always kept")
	_ = bStillThere

	snap := d.Stats().Snapshot()
	assert.GreaterOrEqual(t, snap.Evictions, uint64(1))
}

func TestDiskNeverEvictsTheSoleRemainingFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDisk[string](dir, 1) // budget far smaller than any single entry

	require.NoError(t, d.Store("only.json", "this value alone exceeds the tiny budget"))

	_, ok, err := d.Load("only.json")
	require.NoError(t, err)
	assert.True(t, ok, "the single most-recently-stored file is always kept, per spec invariant 3")
}

