package inventorysync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"
	"inventory-sync/core/storage/mocks"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner returns a fresh completed report per call unless err is set.
type fakeRunner struct {
	err     error
	release chan struct{}
	started chan struct{}

	mu        sync.Mutex
	opts      []reconcile.Options
	calls     atomic.Int32
	startOnce sync.Once
}

func (f *fakeRunner) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}

	state := reconcile.StateCompleted
	if f.err != nil {
		state = reconcile.StateFailed
	}
	now := time.Now().UTC()
	return &reconcile.Report{ID: uuid.NewString(), State: state, DryRun: opts.DryRun, Started: now, Finished: now}, f.err
}

func (f *fakeRunner) lastOptions() reconcile.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[len(f.opts)-1]
}

func defaultOptions() reconcile.Options {
	return reconcile.Options{
		Policy:  reconcile.Policy{inventory.KindDevice: reconcile.StrategyOverwrite},
		Workers: 4,
	}
}

func boolPtr(v bool) *bool { return &v }

func TestService_Options(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil, defaultOptions(), zap.NewNop())

	opts, err := svc.Options(RunRequest{})
	require.NoError(t, err)
	assert.Empty(t, opts.Kinds)
	assert.False(t, opts.DryRun)
	assert.Equal(t, 4, opts.Workers)

	opts, err = svc.Options(RunRequest{Kinds: []string{"interfaces,devices", "sites"}, DryRun: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []inventory.Kind{inventory.KindLocation, inventory.KindDevice, inventory.KindInterface}, opts.Kinds)
	assert.True(t, opts.DryRun)

	_, err = svc.Options(RunRequest{Kinds: []string{"racks"}})
	assert.ErrorIs(t, err, reconcile.ErrConfiguration)
}

func TestService_RunKeepsReport(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, nil, defaultOptions(), zap.NewNop())
	ctx := context.Background()

	report, err := svc.Run(ctx, RunRequest{DryRun: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.True(t, runner.lastOptions().DryRun)

	got, err := svc.Report(ctx, report.ID)
	require.NoError(t, err)
	assert.Same(t, report, got)

	_, err = svc.Report(ctx, "unknown")
	assert.ErrorIs(t, err, ErrReportNotFound)

	second, err := svc.Run(ctx, RunRequest{})
	require.NoError(t, err)
	infos, err := svc.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, second.ID, infos[0].ID)
	assert.Equal(t, report.ID, infos[1].ID)
}

func TestService_RecentReportsBounded(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil, defaultOptions(), zap.NewNop())
	var first string
	for i := 0; i < recentLimit+5; i++ {
		r, err := svc.Run(context.Background(), RunRequest{})
		require.NoError(t, err)
		if i == 0 {
			first = r.ID
		}
	}
	infos, err := svc.Reports(context.Background())
	require.NoError(t, err)
	assert.Len(t, infos, recentLimit)
	_, err = svc.Report(context.Background(), first)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestService_ConcurrentIdenticalRunsShareOneRun(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{}), started: make(chan struct{})}
	svc := NewService(runner, nil, defaultOptions(), zap.NewNop())

	var wg sync.WaitGroup
	reports := make([]*reconcile.Report, 2)
	run := func(i int) {
		defer wg.Done()
		r, err := svc.Run(context.Background(), RunRequest{Kinds: []string{"device"}})
		assert.NoError(t, err)
		reports[i] = r
	}

	wg.Add(2)
	go run(0)
	<-runner.started
	go run(1)
	// Give the second caller time to join the in-flight run.
	time.Sleep(100 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	require.NotNil(t, reports[0])
	assert.Same(t, reports[0], reports[1])
}

func TestService_RunDetachedFromCancellation(t *testing.T) {
	runner := &ctxRunner{}
	svc := NewService(runner, nil, defaultOptions(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, RunRequest{})
	require.NoError(t, err)
	assert.NoError(t, runner.seen)
}

type ctxRunner struct{ seen error }

func (r *ctxRunner) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error) {
	r.seen = ctx.Err()
	return &reconcile.Report{ID: "detached", State: reconcile.StateCompleted}, nil
}

func TestService_RunFailureStillReturnsReport(t *testing.T) {
	runner := &fakeRunner{err: errors.Join(reconcile.ErrSourceUnavailable, errors.New("dial tcp: refused"))}
	svc := NewService(runner, nil, defaultOptions(), zap.NewNop())

	report, err := svc.Run(context.Background(), RunRequest{})
	assert.ErrorIs(t, err, reconcile.ErrSourceUnavailable)
	require.NotNil(t, report)
	assert.Equal(t, reconcile.StateFailed, report.State)
}

func TestService_ArchivesReports(t *testing.T) {
	mockClient := new(mocks.Client)
	archive := NewArchive(mockClient, archiveConfig(0), zap.NewNop())
	svc := NewService(&fakeRunner{}, archive, defaultOptions(), zap.NewNop())

	mockClient.On("PutObject", mock.Anything, "inventory-sync", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket offline")).Once()

	// Archive failures are logged, the run result stands.
	report, err := svc.Run(context.Background(), RunRequest{})
	require.NoError(t, err)
	require.NotNil(t, report)
	mockClient.AssertExpectations(t)

	// Reports not in memory are read from the archive.
	mockClient.On("GetObject", mock.Anything, "inventory-sync", "reports/old-run.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})
	_, err = svc.Report(context.Background(), "old-run")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestService_Kinds(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil, defaultOptions(), zap.NewNop())
	kinds := svc.Kinds()
	require.Len(t, kinds, 6)
	assert.Equal(t, inventory.KindLocation, kinds[0].Kind)
	assert.Equal(t, reconcile.StrategyFlag, kinds[0].Strategy)
	assert.Equal(t, inventory.KindDevice, kinds[1].Kind)
	assert.Equal(t, reconcile.StrategyOverwrite, kinds[1].Strategy)
	assert.Equal(t, []string{"device", "name"}, kinds[2].KeyFields)
}

func TestService_RunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detached := &ctxRunner{}
	_, err := NewService(detached, nil, defaultOptions(), zap.NewNop()).Run(ctx, RunRequest{})
	require.NoError(t, err)
	assert.NoError(t, detached.seen)

	bound := &ctxRunner{}
	report, err := NewService(bound, nil, defaultOptions(), zap.NewNop(), BindToCaller()).Run(ctx, RunRequest{})
	require.NoError(t, err)
	assert.ErrorIs(t, bound.seen, context.Canceled)
	require.NotNil(t, report)
}
