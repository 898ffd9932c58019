// Package registry implements the shared, time-ordered expiry index for
// authenticated real-time connections. One entry exists per authenticated
// session; any server process may sweep a namespace and reclaim lapsed
// entries. Namespaces scope sweeps per gateway channel so unrelated channels
// do not interfere with each other.
package registry

import (
	"context"
	"time"
)

// Registry is the expiry index contract.
//
// Scores are eviction deadlines: the credential expiry minus the configured
// eviction margin, in milliseconds since epoch. The margin is applied once,
// at record time, so Sweep simply pops everything due before now.
type Registry interface {
	// Record upserts the entry for a connection. Later calls overwrite the
	// score; re-authentication never creates a second entry.
	Record(ctx context.Context, namespace, connID string, expiresAt time.Time, margin time.Duration) error

	// Remove deletes the entry for a connection. Removing an absent entry
	// is not an error.
	Remove(ctx context.Context, namespace, connID string) error

	// Sweep atomically returns and removes every entry whose deadline is
	// strictly before now. Concurrent sweepers on the same namespace never
	// both receive the same id.
	Sweep(ctx context.Context, namespace string) ([]string, error)
}

func deadlineMillis(expiresAt time.Time, margin time.Duration) int64 {
	return expiresAt.Add(-margin).UnixMilli()
}
