package inventorysync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// recentLimit bounds the reports kept in memory.
const recentLimit = 50

// Runner runs a sync. *reconcile.Runner implements it.
type Runner interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error)
}

// RunRequest selects what a triggered run does. Unset fields fall back to the
// configured defaults.
type RunRequest struct {
	Kinds  []string `json:"kinds,omitempty" example:"device,interface"`
	DryRun *bool    `json:"dry_run,omitempty"`
}

// KindInfo describes one entity kind and how it is reconciled.
type KindInfo struct {
	Kind       inventory.Kind     `json:"kind"`
	Strategy   reconcile.Strategy `json:"strategy"`
	KeyFields  []string           `json:"key_fields"`
	Attributes []string           `json:"attributes"`
}

// Service triggers runs and keeps their reports.
type Service struct {
	runner   Runner
	archive  *Archive
	defaults reconcile.Options
	logger   *zap.Logger

	group  singleflight.Group
	detach bool

	mu     sync.RWMutex
	recent map[string]*reconcile.Report
	order  []string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// BindToCaller makes runs honour cancellation of the caller's context. By default a run
// is detached so a dropped HTTP client does not leave the target half-applied.
func BindToCaller() ServiceOption {
	return func(s *Service) {
		s.detach = false
	}
}

// NewService creates the sync service. archive may be nil to keep reports in memory only.
func NewService(runner Runner, archive *Archive, defaults reconcile.Options, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		runner:   runner,
		archive:  archive,
		defaults: defaults,
		logger:   logger,
		detach:   true,
		recent:   make(map[string]*reconcile.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options merges a request into the default run options.
func (s *Service) Options(req RunRequest) (reconcile.Options, error) {
	opts := s.defaults
	if len(req.Kinds) > 0 {
		var names []string
		for _, k := range req.Kinds {
			names = append(names, strings.Split(k, ",")...)
		}
		kinds, err := inventory.ParseKinds(names)
		if err != nil {
			return reconcile.Options{}, &reconcile.ConfigurationError{Field: "kinds", Reason: err.Error()}
		}
		opts.Kinds = kinds
	}
	if req.DryRun != nil {
		opts.DryRun = *req.DryRun
	}
	return opts, nil
}

// Run executes a sync run. Concurrent calls with the same kinds and dry-run flag share
// one run. Unless the service was built with BindToCaller, the run is detached from ctx
// cancellation. The report is archived even when the run was cancelled.
func (s *Service) Run(ctx context.Context, req RunRequest) (*reconcile.Report, error) {
	opts, err := s.Options(req)
	if err != nil {
		return nil, err
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = inventory.Kinds()
	}
	key := fmt.Sprintf("%v|%t", kinds, opts.DryRun)

	v, err, shared := s.group.Do(key, func() (any, error) {
		runCtx := ctx
		if s.detach {
			runCtx = context.WithoutCancel(ctx)
		}
		report, err := s.runner.Run(runCtx, opts)
		if report != nil {
			s.remember(report)
			s.store(context.WithoutCancel(ctx), report)
		}
		return report, err
	})
	if shared {
		s.logger.Debug("Joined in-flight sync run", zap.String("key", key))
	}

	report, _ := v.(*reconcile.Report)
	return report, err
}

func (s *Service) store(ctx context.Context, report *reconcile.Report) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(ctx, report); err != nil {
		s.logger.Error("Failed to archive run report", zap.String("run_id", report.ID), zap.Error(err))
	}
}

func (s *Service) remember(report *reconcile.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recent[report.ID]; !ok {
		s.order = append(s.order, report.ID)
	}
	s.recent[report.ID] = report
	for len(s.order) > recentLimit {
		delete(s.recent, s.order[0])
		s.order = s.order[1:]
	}
}

// Report returns the report of a run, from memory or from the archive.
func (s *Service) Report(ctx context.Context, id string) (*reconcile.Report, error) {
	s.mu.RLock()
	report, ok := s.recent[id]
	s.mu.RUnlock()
	if ok {
		return report, nil
	}
	if s.archive == nil {
		return nil, ErrReportNotFound
	}
	return s.archive.Load(ctx, id)
}

// Reports lists known reports, newest first. Archived reports are included when an
// archive is configured.
func (s *Service) Reports(ctx context.Context) ([]ReportInfo, error) {
	s.mu.RLock()
	infos := make([]ReportInfo, 0, len(s.order))
	seen := make(map[string]struct{}, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.recent[s.order[i]]
		infos = append(infos, ReportInfo{ID: r.ID, Modified: r.Finished})
		seen[r.ID] = struct{}{}
	}
	s.mu.RUnlock()

	if s.archive == nil {
		return infos, nil
	}
	archived, err := s.archive.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, info := range archived {
		if _, ok := seen[info.ID]; !ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// Kinds describes every entity kind in dependency order.
func (s *Service) Kinds() []KindInfo {
	kinds := inventory.Kinds()
	out := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		schema := inventory.SchemaFor(k)
		out = append(out, KindInfo{
			Kind:       k,
			Strategy:   s.defaults.Policy.For(k),
			KeyFields:  slices.Clone(schema.KeyFields),
			Attributes: slices.Clone(schema.Attributes),
		})
	}
	return out
}

// isClientError reports whether err was caused by the request rather than the systems.
func isClientError(err error) bool {
	return errors.Is(err, reconcile.ErrConfiguration)
}
