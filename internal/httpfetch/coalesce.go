package httpfetch

import (
	"context"
	"log/slog"

	"docsmcp/internal/cache"
)

// Coalesced is the canonical single-flight pattern from spec §4.4: check
// the disk cache, and if absent acquire the named flight lock, re-check the
// disk cache (another caller may have populated it while we waited), and
// only then call fetch. At most one upstream call is ever in flight per
// flightKey at a time.
func Coalesced[T any](ctx context.Context, f *Fetcher, disk *cache.Disk[T], flightKey, fileName string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if disk != nil {
		if entry, ok, err := disk.Load(fileName); err == nil && ok {
			return entry.Value, nil
		}
	}
	raw, err := f.SingleFlight(ctx, flightKey, func(ctx context.Context) (any, error) {
		if disk != nil {
			if entry, ok, _ := disk.Load(fileName); ok {
				return entry.Value, nil
			}
		}
		val, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if disk != nil {
			// A disk write failure is logged and must never fail the
			// operation: the caller already has val in hand.
			if err := disk.Store(fileName, val); err != nil {
				slog.Warn("disk cache write failed", "file", fileName, "error", err)
			}
		}
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ := raw.(T)
	return v, nil
}
