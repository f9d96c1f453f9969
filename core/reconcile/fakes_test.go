package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"inventory-sync/core/inventory"
)

// fakeSource serves prepared snapshots.
type fakeSource struct {
	snapshots map[inventory.Kind]*inventory.Snapshot
	fetchErr  map[inventory.Kind]error
	pingErr   error
}

func (f *fakeSource) Name() string { return "fake-source" }

func (f *fakeSource) FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error) {
	if err := f.fetchErr[kind]; err != nil {
		return nil, err
	}
	if s, ok := f.snapshots[kind]; ok {
		return s, nil
	}
	return inventory.NewSnapshotBuilder(kind).Build(), nil
}

func (f *fakeSource) Ping(ctx context.Context) error { return f.pingErr }

type applyCall struct {
	Op  Change
	Key inventory.Key
}

// fakeTarget serves prepared snapshots and records apply calls.
type fakeTarget struct {
	snapshots   map[inventory.Kind]*inventory.Snapshot
	fetchErr    map[inventory.Kind]error
	failKeys    map[inventory.Key]string
	concurrency int
	// onApply runs inside every apply call before it returns.
	onApply func(ctx context.Context, key inventory.Key)

	mu       sync.Mutex
	calls    []applyCall
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeTarget) Name() string { return "fake-target" }

func (f *fakeTarget) FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error) {
	if err := f.fetchErr[kind]; err != nil {
		return nil, err
	}
	if s, ok := f.snapshots[kind]; ok {
		return s, nil
	}
	return inventory.NewSnapshotBuilder(kind).Build(), nil
}

func (f *fakeTarget) ApplyCreate(ctx context.Context, e inventory.Entity) error {
	return f.record(ctx, ChangeCreate, e.Kind(), e.Key())
}

func (f *fakeTarget) ApplyUpdate(ctx context.Context, key inventory.Key, e inventory.Entity) error {
	return f.record(ctx, ChangeUpdate, e.Kind(), key)
}

func (f *fakeTarget) Concurrency() int { return f.concurrency }

func (f *fakeTarget) record(ctx context.Context, op Change, kind inventory.Kind, key inventory.Key) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.onApply != nil {
		f.onApply(ctx, key)
	}

	f.mu.Lock()
	f.calls = append(f.calls, applyCall{Op: op, Key: key})
	f.mu.Unlock()

	if reason, ok := f.failKeys[key]; ok {
		return &ApplyError{Kind: kind, Key: key, Op: op, Reason: reason, Err: errors.New(reason)}
	}
	return nil
}

func (f *fakeTarget) Calls() []applyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]applyCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func snapshot(kind inventory.Kind, entities ...inventory.Entity) *inventory.Snapshot {
	s, err := inventory.NewSnapshot(kind, entities...)
	if err != nil {
		panic(err)
	}
	return s
}

func int64Ptr(v int64) *int64 { return &v }
