package reconcile

import (
	"context"

	"inventory-sync/core/inventory"
)

// SourceAdapter reads the authoritative record system.
type SourceAdapter interface {
	// Name identifies the adapter in logs and reports.
	Name() string

	// FetchSnapshot builds the snapshot of one kind. Rows that cannot be mapped are
	// recorded as rejects on the snapshot, never returned as an error. Connectivity
	// failures wrap ErrSourceUnavailable.
	FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error)
}

// TargetAdapter reads and writes the managed inventory.
type TargetAdapter interface {
	// Name identifies the adapter in logs and reports.
	Name() string

	// FetchSnapshot builds the snapshot of one kind. Connectivity failures wrap
	// ErrTargetUnavailable.
	FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error)

	// ApplyCreate creates an entity. Creating a key that already exists must not
	// duplicate it.
	ApplyCreate(ctx context.Context, e inventory.Entity) error

	// ApplyUpdate updates the existing record identified by key with the attributes of e.
	ApplyUpdate(ctx context.Context, key inventory.Key, e inventory.Entity) error

	// Concurrency is the maximum number of concurrent apply calls the adapter supports.
	// Zero or less means no adapter-side limit.
	Concurrency() int
}

// Pinger is implemented by adapters that can cheaply check reachability before a run.
type Pinger interface {
	Ping(ctx context.Context) error
}
