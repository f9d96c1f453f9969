package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory-sync/core/inventory"
	"inventory-sync/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runOnce(t *testing.T, source *fakeSource, target *fakeTarget, opts Options) *Report {
	t.Helper()
	report, err := NewRunner(source, target, zap.NewNop()).Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

// Scenario: a new location is created under overwrite.
func TestRun_CreateLocation(t *testing.T) {
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, &inventory.Location{Name: "NYC-DC1", Status: "active"}),
	}}
	target := &fakeTarget{}

	report := runOnce(t, source, target, Options{
		Kinds:  []inventory.Kind{inventory.KindLocation},
		Policy: Policy{inventory.KindLocation: StrategyOverwrite},
	})

	assert.Equal(t, StateCompleted, report.State)
	kr, ok := report.Kind(inventory.KindLocation)
	require.True(t, ok)
	item, ok := kr.Item(inventory.NewKey("NYC-DC1"))
	require.True(t, ok)
	assert.Equal(t, ChangeCreate, item.Change)
	assert.Equal(t, DecisionApply, item.Decision)
	assert.Equal(t, OutcomeApplied, item.Outcome)
	assert.Equal(t, 1, kr.Counts.Created)
	assert.Equal(t, []applyCall{{Op: ChangeCreate, Key: inventory.NewKey("NYC-DC1")}}, target.Calls())
}

// Scenario: a differing device is left untouched under skip.
func TestRun_SkipDeviceUpdate(t *testing.T) {
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindDevice: snapshot(inventory.KindDevice, &inventory.Device{Name: "nyc-core-01", Status: "active"}),
	}}
	target := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindDevice: snapshot(inventory.KindDevice, &inventory.Device{Name: "nyc-core-01", Status: "planned"}),
	}}

	report := runOnce(t, source, target, Options{
		Kinds:  []inventory.Kind{inventory.KindDevice},
		Policy: Policy{inventory.KindDevice: StrategySkip},
	})

	kr, _ := report.Kind(inventory.KindDevice)
	item, ok := kr.Item(inventory.NewKey("nyc-core-01"))
	require.True(t, ok)
	assert.Equal(t, ChangeUpdate, item.Change)
	assert.Equal(t, DecisionSkip, item.Decision)
	assert.Equal(t, OutcomeSkipped, item.Outcome)
	assert.Equal(t, []inventory.FieldChange{{Field: "status", Source: "active", Target: "planned"}}, item.Changes)
	assert.Equal(t, 1, kr.Counts.Skipped)
	assert.Empty(t, target.Calls())
}

// Scenario: a differing circuit is flagged and nothing is written.
func TestRun_FlagCircuitUpdate(t *testing.T) {
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindCircuit: snapshot(inventory.KindCircuit,
			&inventory.Circuit{CID: "CKT-LAX-001", Provider: "Zayo", CommitRate: int64Ptr(100000000)}),
	}}
	target := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindCircuit: snapshot(inventory.KindCircuit,
			&inventory.Circuit{CID: "CKT-LAX-001", Provider: "Zayo", CommitRate: int64Ptr(50000000)}),
	}}

	report := runOnce(t, source, target, Options{
		Kinds:  []inventory.Kind{inventory.KindCircuit},
		Policy: Policy{inventory.KindCircuit: StrategyFlag},
	})

	kr, _ := report.Kind(inventory.KindCircuit)
	item, ok := kr.Item(inventory.ScopedKey("Zayo", "CKT-LAX-001"))
	require.True(t, ok)
	assert.Equal(t, DecisionFlag, item.Decision)
	assert.Equal(t, OutcomeFlagged, item.Outcome)
	assert.Equal(t, "commit_rate", item.Changes[0].Field)
	assert.Empty(t, target.Calls())
}

// Scenario: a prefix only present in the target is reported and never deleted.
func TestRun_TargetOnlyPrefixNeverDeleted(t *testing.T) {
	for _, strategy := range []Strategy{StrategyOverwrite, StrategySkip, StrategyFlag} {
		t.Run(string(strategy), func(t *testing.T) {
			source := &fakeSource{}
			target := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
				inventory.KindPrefix: snapshot(inventory.KindPrefix, &inventory.Prefix{Prefix: "172.16.0.0/12"}),
			}}

			report := runOnce(t, source, target, Options{
				Kinds:  []inventory.Kind{inventory.KindPrefix},
				Policy: Policy{inventory.KindPrefix: strategy},
			})

			kr, _ := report.Kind(inventory.KindPrefix)
			assert.Equal(t, []inventory.Key{inventory.ScopedKey("Global", "172.16.0.0/12")}, kr.TargetOnly)
			assert.Equal(t, 1, kr.Counts.TargetOnly)
			assert.Empty(t, kr.Items)
			assert.Empty(t, target.Calls())
		})
	}
}

func TestRun_DryRunNeverMutates(t *testing.T) {
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation,
			&inventory.Location{Name: "NYC-DC1", Status: "active"},
			&inventory.Location{Name: "LAX-DC2", Status: "active"}),
		inventory.KindDevice: snapshot(inventory.KindDevice, &inventory.Device{Name: "nyc-core-01", Status: "active"}),
	}}
	target := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, &inventory.Location{Name: "LAX-DC2", Status: "planned"}),
		inventory.KindDevice:   snapshot(inventory.KindDevice, &inventory.Device{Name: "nyc-core-01", Status: "planned"}),
	}}

	report := runOnce(t, source, target, Options{
		DryRun: true,
		Policy: Policy{inventory.KindLocation: StrategyOverwrite, inventory.KindDevice: StrategySkip},
	})

	assert.True(t, report.DryRun)
	assert.Empty(t, target.Calls())

	loc, _ := report.Kind(inventory.KindLocation)
	for _, item := range loc.Items {
		assert.Equal(t, DecisionApply, item.Decision)
		assert.Equal(t, OutcomeDryRunPreview, item.Outcome)
	}
	assert.Equal(t, 1, loc.Counts.WouldCreate)
	assert.Equal(t, 1, loc.Counts.WouldUpdate)
	assert.Zero(t, loc.Counts.Created)

	dev, _ := report.Kind(inventory.KindDevice)
	item, _ := dev.Item(inventory.NewKey("nyc-core-01"))
	assert.Equal(t, OutcomeSkipped, item.Outcome)
}

func TestRun_MalformedRowIsolated(t *testing.T) {
	b := inventory.NewSnapshotBuilder(inventory.KindDevice)
	require.NoError(t, b.Add(&inventory.Device{Name: "nyc-core-01", Status: "active"}))
	require.NoError(t, b.Add(&inventory.Device{Name: "lax-core-01", Status: "active"}))
	b.Reject(inventory.Reject{Row: 2, Reason: "field name: required natural-key field is empty"})

	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{inventory.KindDevice: b.Build()}}
	target := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindDevice: snapshot(inventory.KindDevice, &inventory.Device{Name: "lax-core-01", Status: "active"}),
	}}

	report := runOnce(t, source, target, Options{
		Kinds:  []inventory.Kind{inventory.KindDevice},
		Policy: Policy{inventory.KindDevice: StrategyOverwrite},
	})

	kr, _ := report.Kind(inventory.KindDevice)
	assert.Equal(t, KindCompleted, kr.Status)
	assert.Equal(t, 1, kr.Counts.Created)
	assert.Equal(t, 1, kr.Counts.Unchanged)
	require.Len(t, kr.SourceErrors, 1)
	assert.Equal(t, 2, kr.SourceErrors[0].Row)
	assert.Equal(t, 1, kr.Counts.SourceErrors)
	assert.Empty(t, kr.TargetOnly)
}

func TestRun_ApplyErrorIsolatedPerItem(t *testing.T) {
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindDevice: snapshot(inventory.KindDevice,
			&inventory.Device{Name: "a", Location: "NYC-DC1"},
			&inventory.Device{Name: "b", Location: "MISSING"},
			&inventory.Device{Name: "c", Location: "NYC-DC1"}),
	}}
	target := &fakeTarget{failKeys: map[inventory.Key]string{inventory.NewKey("b"): "location MISSING does not exist"}}

	report := runOnce(t, source, target, Options{
		Kinds:   []inventory.Kind{inventory.KindDevice},
		Policy:  Policy{inventory.KindDevice: StrategyOverwrite},
		Workers: 3,
	})

	kr, _ := report.Kind(inventory.KindDevice)
	assert.Equal(t, 2, kr.Counts.Created)
	assert.Equal(t, 1, kr.Counts.Failed)
	item, _ := kr.Item(inventory.NewKey("b"))
	assert.Equal(t, OutcomeFailed, item.Outcome)
	assert.Equal(t, "location MISSING does not exist", item.Reason)
	assert.Len(t, target.Calls(), 3)
}

func TestRun_KindFailureDoesNotBlockLaterKinds(t *testing.T) {
	source := &fakeSource{
		fetchErr: map[inventory.Kind]error{inventory.KindDevice: errors.New("table devices missing")},
		snapshots: map[inventory.Kind]*inventory.Snapshot{
			inventory.KindInterface: snapshot(inventory.KindInterface, &inventory.Interface{Device: "d", Name: "eth0"}),
		},
	}
	target := &fakeTarget{fetchErr: map[inventory.Kind]error{inventory.KindCircuit: errors.New("timeout")}}

	report := runOnce(t, source, target, Options{Policy: Policy{inventory.KindInterface: StrategyOverwrite}})

	assert.Equal(t, StateCompleted, report.State)
	require.Len(t, report.Kinds, 6)
	assert.Equal(t, inventory.Kinds()[0], report.Kinds[0].Kind)

	dev, _ := report.Kind(inventory.KindDevice)
	assert.Equal(t, KindFailed, dev.Status)
	assert.Contains(t, dev.Error, ErrSourceUnavailable.Error())

	circ, _ := report.Kind(inventory.KindCircuit)
	assert.Equal(t, KindFailed, circ.Status)
	assert.Contains(t, circ.Error, ErrTargetUnavailable.Error())

	iface, _ := report.Kind(inventory.KindInterface)
	assert.Equal(t, KindCompleted, iface.Status)
	assert.Equal(t, 1, iface.Counts.Created)
}

func TestRun_EveryKindFailedMarksRunFailed(t *testing.T) {
	down := errors.New("connection refused")
	source := &fakeSource{fetchErr: map[inventory.Kind]error{}}
	for _, k := range inventory.Kinds() {
		source.fetchErr[k] = down
	}

	report, err := NewRunner(source, &fakeTarget{}, zap.NewNop()).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, report.State)
	assert.NotEmpty(t, report.Error)
}

func TestRun_ProbeFailure(t *testing.T) {
	source := &fakeSource{pingErr: errors.New("dial tcp: connection refused")}
	report, err := NewRunner(source, &fakeTarget{}, zap.NewNop()).Run(context.Background(), Options{})

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	require.NotNil(t, report)
	assert.Equal(t, StateFailed, report.State)
	assert.Empty(t, report.Kinds)
	assert.False(t, report.Finished.IsZero())
}

func TestRun_ConfigurationErrors(t *testing.T) {
	runner := NewRunner(&fakeSource{}, &fakeTarget{}, nil)

	_, err := runner.Run(context.Background(), Options{Policy: Policy{inventory.KindDevice: "merge"}})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = runner.Run(context.Background(), Options{Kinds: []inventory.Kind{"vlan"}})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = runner.Run(context.Background(), Options{Workers: -1})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewRunner(nil, &fakeTarget{}, nil).Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRun_KindsRunInDependencyOrder(t *testing.T) {
	report := runOnce(t, &fakeSource{}, &fakeTarget{}, Options{
		Kinds: []inventory.Kind{inventory.KindCircuit, inventory.KindLocation, inventory.KindInterface, inventory.KindLocation},
	})

	var got []inventory.Kind
	for _, k := range report.Kinds {
		got = append(got, k.Kind)
	}
	assert.Equal(t, []inventory.Kind{inventory.KindLocation, inventory.KindInterface, inventory.KindCircuit}, got)
}

func TestRun_ConcurrencyBoundedByAdapter(t *testing.T) {
	var locations []inventory.Entity
	for i := 0; i < 20; i++ {
		locations = append(locations, &inventory.Location{Name: fmt.Sprintf("SITE-%02d", i)})
	}
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, locations...),
	}}
	target := &fakeTarget{
		concurrency: 2,
		onApply:     func(context.Context, inventory.Key) { time.Sleep(5 * time.Millisecond) },
	}

	report := runOnce(t, source, target, Options{
		Kinds:   []inventory.Kind{inventory.KindLocation},
		Policy:  Policy{inventory.KindLocation: StrategyOverwrite},
		Workers: 8,
	})

	kr, _ := report.Kind(inventory.KindLocation)
	assert.Equal(t, 20, kr.Counts.Created)
	assert.LessOrEqual(t, target.peak.Load(), int32(2))
}

func TestRun_CancelMidKind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation,
			&inventory.Location{Name: "A"}, &inventory.Location{Name: "B"}, &inventory.Location{Name: "C"}),
		inventory.KindDevice: snapshot(inventory.KindDevice, &inventory.Device{Name: "nyc-core-01"}),
	}}
	target := &fakeTarget{
		onApply: func(applyCtx context.Context, key inventory.Key) {
			cancel()
			// The in-flight call keeps a live context.
			assert.NoError(t, applyCtx.Err())
		},
	}

	report, err := NewRunner(source, target, zap.NewNop()).Run(ctx, Options{
		Kinds:   []inventory.Kind{inventory.KindLocation, inventory.KindDevice},
		Policy:  Policy{inventory.KindLocation: StrategyOverwrite, inventory.KindDevice: StrategyOverwrite},
		Workers: 1,
	})
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Equal(t, StateCompleted, report.State)

	loc, _ := report.Kind(inventory.KindLocation)
	assert.Equal(t, 1, loc.Counts.Created)
	assert.Equal(t, 2, loc.Counts.Failed)
	item, _ := loc.Item(inventory.NewKey("C"))
	assert.Equal(t, ErrCancelled.Error(), item.Reason)

	dev, _ := report.Kind(inventory.KindDevice)
	assert.Equal(t, KindCancelled, dev.Status)
	assert.Len(t, target.Calls(), 1)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	entities := []inventory.Entity{
		&inventory.Location{Name: "NYC-DC1", Status: "active"},
		&inventory.Location{Name: "LAX-DC2", Status: "active"},
	}
	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, entities...),
	}}
	opts := Options{Kinds: []inventory.Kind{inventory.KindLocation}, Policy: Policy{inventory.KindLocation: StrategyOverwrite}}

	first := runOnce(t, source, &fakeTarget{}, opts)
	kr, _ := first.Kind(inventory.KindLocation)
	assert.Equal(t, 2, kr.Counts.Created)

	// The target now mirrors the source.
	converged := &fakeTarget{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, entities...),
	}}
	second := runOnce(t, source, converged, opts)
	kr, _ = second.Kind(inventory.KindLocation)
	assert.Empty(t, kr.Items)
	assert.Equal(t, 2, kr.Counts.Unchanged)
	assert.Empty(t, converged.Calls())
}

func TestRun_RecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	source := &fakeSource{snapshots: map[inventory.Kind]*inventory.Snapshot{
		inventory.KindLocation: snapshot(inventory.KindLocation, &inventory.Location{Name: "NYC-DC1"}),
	}}
	_, err := NewRunner(source, &fakeTarget{}, zap.NewNop(), WithMetrics(m)).Run(context.Background(), Options{
		Kinds:  []inventory.Kind{inventory.KindLocation},
		Policy: Policy{inventory.KindLocation: StrategyOverwrite},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Items.WithLabelValues("location", "applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Runs.WithLabelValues("completed", "false")))
}
