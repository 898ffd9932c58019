package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_SweepRespectsMargin(t *testing.T) {
	clock := newFakeClock(time.Unix(1700000000, 0))
	reg := NewMemoryRegistry(clock.Now)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "chat", "conn-1", clock.Now().Add(time.Minute), 10*time.Second))

	clock.Advance(49 * time.Second)
	ids, err := reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Empty(t, ids)

	clock.Advance(2 * time.Second)
	ids, err = reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Equal(t, []string{"conn-1"}, ids)

	ids, err = reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestMemoryRegistry_RecordOverwritesScore(t *testing.T) {
	clock := newFakeClock(time.Unix(1700000000, 0))
	reg := NewMemoryRegistry(clock.Now)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "chat", "conn-1", clock.Now().Add(time.Second), 0))
	require.NoError(t, reg.Record(ctx, "chat", "conn-1", clock.Now().Add(time.Hour), 0))

	clock.Advance(time.Minute)
	ids, err := reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Empty(t, ids)

	// Past the overwritten deadline the entry is swept, exactly once.
	clock.Advance(time.Hour)
	ids, err = reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Equal(t, []string{"conn-1"}, ids)

	ids, err = reg.Sweep(ctx, "chat")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestMemoryRegistry_RemoveIdempotent(t *testing.T) {
	clock := newFakeClock(time.Unix(1700000000, 0))
	reg := NewMemoryRegistry(clock.Now)
	ctx := context.Background()

	require.NoError(t, reg.Remove(ctx, "chat", "missing"))
	require.NoError(t, reg.Record(ctx, "chat", "conn-1", clock.Now().Add(time.Second), 0))
	require.NoError(t, reg.Remove(ctx, "chat", "conn-1"))
	require.NoError(t, reg.Remove(ctx, "chat", "conn-1"))
}

func TestMemoryRegistry_ConcurrentSweepersNoDuplicates(t *testing.T) {
	clock := newFakeClock(time.Unix(1700000000, 0))
	reg := NewMemoryRegistry(clock.Now)
	ctx := context.Background()

	const entries = 100
	ids := make([]string, entries)
	for i := range ids {
		ids[i] = "conn-" + time.Duration(i).String()
		require.NoError(t, reg.Record(ctx, "chat", ids[i], clock.Now().Add(time.Second), 0))
	}
	clock.Advance(time.Minute)

	const sweepers = 8
	results := make(chan []string, sweepers)
	var wg sync.WaitGroup
	for i := 0; i < sweepers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.Sweep(ctx, "chat")
			require.NoError(t, err)
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]int)
	for got := range results {
		for _, id := range got {
			seen[id]++
		}
	}
	require.Len(t, seen, entries)
	for id, count := range seen {
		require.Equal(t, 1, count, "id %s reclaimed more than once", id)
	}
}
