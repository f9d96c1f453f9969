package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"inventory-sync/core/inventory"
	"inventory-sync/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner is the sync run controller. It is safe to call Run concurrently; each run owns
// its snapshots and report.
type Runner struct {
	source  SourceAdapter
	target  TargetAdapter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithMetrics records run, kind and item outcomes on m.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a run controller over a source and a target adapter.
func NewRunner(source SourceAdapter, target TargetAdapter, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{source: source, target: target, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles the selected kinds in dependency order.
//
// Configuration errors are returned before anything is fetched, with a nil report.
// If either system cannot be reached the run fails: the report is returned with state
// failed together with the connectivity error. Every other failure is isolated to its
// kind or item and recorded in the report.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	kinds, workers, err := r.validate(opts)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:      uuid.NewString(),
		State:   StateInitializing,
		DryRun:  opts.DryRun,
		Started: time.Now().UTC(),
		Kinds:   make([]KindReport, 0, len(kinds)),
	}
	log := r.logger.With(zap.String("run_id", report.ID), zap.Bool("dry_run", opts.DryRun))
	log.Info("Sync run started",
		zap.String("source", r.source.Name()),
		zap.String("target", r.target.Name()),
		zap.Int("kinds", len(kinds)),
		zap.Int("workers", workers))

	if err := r.probe(ctx); err != nil {
		report.Error = err.Error()
		r.finish(log, report, StateFailed)
		return report, err
	}

	for i, kind := range kinds {
		if ctx.Err() != nil {
			for _, rest := range kinds[i:] {
				report.Kinds = append(report.Kinds, cancelledKind(rest, opts.Policy.For(rest)))
			}
			break
		}
		report.Kinds = append(report.Kinds, r.runKind(ctx, log, report, kind, opts, workers))
	}
	report.Cancelled = ctx.Err() != nil

	final := StateCompleted
	if allFetchesFailed(report.Kinds) {
		final = StateFailed
		report.Error = "every entity kind failed to fetch"
	}
	r.finish(log, report, final)
	return report, nil
}

func (r *Runner) validate(opts Options) ([]inventory.Kind, int, error) {
	if r.source == nil || r.target == nil {
		return nil, 0, &ConfigurationError{Field: "adapters", Reason: "source and target adapters are required"}
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, 0, err
	}
	if opts.Workers < 0 {
		return nil, 0, &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}

	kinds := inventory.Kinds()
	if len(opts.Kinds) > 0 {
		kinds = make([]inventory.Kind, 0, len(opts.Kinds))
		for _, k := range opts.Kinds {
			if !k.IsValid() {
				return nil, 0, &ConfigurationError{Field: "kinds", Reason: fmt.Sprintf("unknown entity kind %q", k)}
			}
			if !slices.Contains(kinds, k) {
				kinds = append(kinds, k)
			}
		}
		slices.SortFunc(kinds, func(a, b inventory.Kind) int { return a.Rank() - b.Rank() })
	}

	workers := max(opts.Workers, 1)
	if limit := r.target.Concurrency(); limit > 0 {
		workers = min(workers, limit)
	}
	return kinds, workers, nil
}

// probe checks reachability of adapters that support it.
func (r *Runner) probe(ctx context.Context) error {
	var errs []error
	if p, ok := r.source.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, wrapUnavailable(ErrSourceUnavailable, err))
		}
	}
	if p, ok := r.target.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, wrapUnavailable(ErrTargetUnavailable, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runKind(ctx context.Context, log *zap.Logger, report *Report, kind inventory.Kind, opts Options, workers int) KindReport {
	log = log.With(zap.String("kind", kind.String()))
	kr := KindReport{
		Kind:         kind,
		Strategy:     opts.Policy.For(kind),
		Items:        []ItemResult{},
		TargetOnly:   []inventory.Key{},
		SourceErrors: []*SourceDataError{},
	}

	r.setState(log, report, StateFetching)
	source, target, err := r.fetch(ctx, kind)
	if err != nil {
		kr.Status = KindFailed
		if ctx.Err() != nil {
			kr.Status = KindCancelled
		}
		kr.Error = err.Error()
		log.Error("Failed to fetch snapshots", zap.Error(err))
		r.metrics.ObserveKindFailure(kind.String())
		return kr
	}

	for _, rej := range source.Rejects() {
		kr.SourceErrors = append(kr.SourceErrors, &SourceDataError{Kind: kind, Row: rej.Row, Key: rej.Key, Reason: rej.Reason})
		log.Warn("Source row rejected", zap.Int("row", rej.Row), zap.Stringer("key", rej.Key), zap.String("reason", rej.Reason))
	}

	r.setState(log, report, StateReconciling)
	diff := Diff(source, target)
	if diff.TargetOnly != nil {
		kr.TargetOnly = diff.TargetOnly
	}
	kr.Items = plan(diff, source, target, kr.Strategy, opts.DryRun)

	r.setState(log, report, StateApplying)
	if !opts.DryRun {
		r.apply(ctx, kr.Items, source, workers)
	}

	kr.Counts.Unchanged = len(diff.Unchanged)
	kr.Counts.TargetOnly = len(diff.TargetOnly)
	kr.Counts.SourceErrors = len(kr.SourceErrors)
	for _, item := range kr.Items {
		kr.Counts.record(item)
		r.metrics.ObserveItem(kind.String(), string(item.Outcome))
		switch item.Outcome {
		case OutcomeFlagged:
			log.Warn("Item flagged for review", zap.Stringer("key", item.Key), zap.String("change", string(item.Change)))
		case OutcomeFailed:
			log.Error("Item failed", zap.Stringer("key", item.Key), zap.String("reason", item.Reason))
		}
	}
	r.metrics.SetTargetOnly(kind.String(), len(diff.TargetOnly))

	kr.Status = KindCompleted
	log.Info("Kind reconciled",
		zap.String("strategy", string(kr.Strategy)),
		zap.Int("created", kr.Counts.Created),
		zap.Int("updated", kr.Counts.Updated),
		zap.Int("would_create", kr.Counts.WouldCreate),
		zap.Int("would_update", kr.Counts.WouldUpdate),
		zap.Int("skipped", kr.Counts.Skipped),
		zap.Int("flagged", kr.Counts.Flagged),
		zap.Int("failed", kr.Counts.Failed),
		zap.Int("unchanged", kr.Counts.Unchanged),
		zap.Int("target_only", kr.Counts.TargetOnly),
		zap.Int("source_errors", kr.Counts.SourceErrors))
	return kr
}

// fetch builds the source and target snapshots of kind concurrently.
func (r *Runner) fetch(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, *inventory.Snapshot, error) {
	var source, target *inventory.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap, err := r.source.FetchSnapshot(gctx, kind)
		if err != nil {
			return wrapUnavailable(ErrSourceUnavailable, err)
		}
		if snap == nil || snap.Kind() != kind {
			return fmt.Errorf("%w: source returned no %s snapshot", ErrSourceUnavailable, kind)
		}
		source = snap
		return nil
	})
	g.Go(func() error {
		snap, err := r.target.FetchSnapshot(gctx, kind)
		if err != nil {
			return wrapUnavailable(ErrTargetUnavailable, err)
		}
		if snap == nil || snap.Kind() != kind {
			return fmt.Errorf("%w: target returned no %s snapshot", ErrTargetUnavailable, kind)
		}
		target = snap
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// plan evaluates the conflict policy for every pending key. Applies are left without an
// outcome unless the run is a dry run.
func plan(diff DiffResult, source, target *inventory.Snapshot, strategy Strategy, dryRun bool) []ItemResult {
	items := make([]ItemResult, 0, diff.Pending())

	add := func(key inventory.Key, change Change, existing inventory.Entity) {
		candidate, _ := source.Get(key)
		item := ItemResult{
			Kind:     diff.Kind,
			Key:      key,
			Change:   change,
			Decision: Decide(strategy, existing, candidate),
			Changes:  diff.Changes[key],
		}
		switch item.Decision {
		case DecisionSkip:
			item.Outcome = OutcomeSkipped
			item.Reason = fmt.Sprintf("target record differs, strategy %s keeps it", strategy)
		case DecisionFlag:
			item.Outcome = OutcomeFlagged
			item.Reason = fmt.Sprintf("%s requires review under strategy %s", change, strategy)
		case DecisionApply:
			if dryRun {
				item.Outcome = OutcomeDryRunPreview
			}
		}
		items = append(items, item)
	}

	for _, key := range diff.ToCreate {
		add(key, ChangeCreate, nil)
	}
	for _, key := range diff.ToUpdate {
		existing, _ := target.Get(key)
		add(key, ChangeUpdate, existing)
	}
	return items
}

// apply executes the accepted decisions using a bounded worker pool. Cancellation stops
// workers from picking up new items; calls already in flight run to completion.
func (r *Runner) apply(ctx context.Context, items []ItemResult, source *inventory.Snapshot, workers int) {
	var pending []int
	for i := range items {
		if items[i].Decision == DecisionApply && items[i].Outcome == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	jobs := make(chan int, len(pending))
	for _, i := range pending {
		jobs <- i
	}
	close(jobs)

	applyCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(pending)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each worker owns items[i] exclusively.
				item := &items[i]
				if ctx.Err() != nil {
					item.Outcome = OutcomeFailed
					item.Reason = ErrCancelled.Error()
					continue
				}

				entity, _ := source.Get(item.Key)
				var err error
				if item.Change == ChangeCreate {
					err = r.target.ApplyCreate(applyCtx, entity)
				} else {
					err = r.target.ApplyUpdate(applyCtx, item.Key, entity)
				}
				if err != nil {
					item.Outcome = OutcomeFailed
					item.Reason = reasonOf(err)
					continue
				}
				item.Outcome = OutcomeApplied
			}
		}()
	}
	wg.Wait()
}

func (r *Runner) setState(log *zap.Logger, report *Report, state State) {
	report.State = state
	log.Debug("Run state changed", zap.String("state", string(state)))
}

func (r *Runner) finish(log *zap.Logger, report *Report, state State) {
	report.State = state
	report.Finished = time.Now().UTC()
	r.metrics.ObserveRun(string(state), report.DryRun, report.Duration())

	totals := report.Totals()
	fields := []zap.Field{
		zap.String("state", string(state)),
		zap.Bool("cancelled", report.Cancelled),
		zap.Duration("duration", report.Duration()),
		zap.Int("created", totals.Created),
		zap.Int("updated", totals.Updated),
		zap.Int("skipped", totals.Skipped),
		zap.Int("flagged", totals.Flagged),
		zap.Int("failed", totals.Failed),
	}
	if state == StateFailed {
		log.Error("Sync run failed", append(fields, zap.String("error", report.Error))...)
		return
	}
	log.Info("Sync run finished", fields...)
}

func cancelledKind(kind inventory.Kind, strategy Strategy) KindReport {
	return KindReport{
		Kind:         kind,
		Strategy:     strategy,
		Status:       KindCancelled,
		Error:        ErrCancelled.Error(),
		Items:        []ItemResult{},
		TargetOnly:   []inventory.Key{},
		SourceErrors: []*SourceDataError{},
	}
}

func allFetchesFailed(kinds []KindReport) bool {
	if len(kinds) == 0 {
		return false
	}
	for _, k := range kinds {
		if k.Status != KindFailed {
			return false
		}
	}
	return true
}

func wrapUnavailable(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
