package httpfetch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/internal/cache"
)

func TestCoalescedDeduplicatesConcurrentFetches(t *testing.T) {
	f := New(Config{Timeout: time.Second, TTL: time.Minute})
	disk := cache.NewDisk[string](t.TempDir(), 1<<20)

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "value", nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]string, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := Coalesced(context.Background(), f, disk, "key", "key.json", fetch)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give every goroutine a chance to arrive at the singleflight gate
	// before letting the single in-flight fetch proceed.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "only one upstream fetch should run for concurrent callers sharing a key")
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestCoalescedReturnsFromDiskWithoutCallingFetch(t *testing.T) {
	f := New(Config{Timeout: time.Second, TTL: time.Minute})
	disk := cache.NewDisk[string](t.TempDir(), 1<<20)
	require.NoError(t, disk.Store("key.json", "cached"))

	var called bool
	v, err := Coalesced(context.Background(), f, disk, "key", "key.json", func(ctx context.Context) (string, error) {
		called = true
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", v)
	assert.False(t, called)
}

func TestCoalescedStoresFetchedValueToDisk(t *testing.T) {
	f := New(Config{Timeout: time.Second, TTL: time.Minute})
	disk := cache.NewDisk[string](t.TempDir(), 1<<20)

	v, err := Coalesced(context.Background(), f, disk, "key", "key.json", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fetched", v)

	entry, ok, err := disk.Load("key.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fetched", entry.Value)
}

func TestCoalescedPropagatesFetchError(t *testing.T) {
	f := New(Config{Timeout: time.Second, TTL: time.Minute})
	disk := cache.NewDisk[string](t.TempDir(), 1<<20)
	wantErr := assert.AnError

	_, err := Coalesced(context.Background(), f, disk, "key", "key.json", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	_, ok, _ := disk.Load("key.json")
	assert.False(t, ok, "a failed fetch must not populate the disk cache")
}
