package reconcile

import (
	"time"

	"inventory-sync/core/inventory"
)

// State is the lifecycle state of a run.
type State string

const (
	StateInitializing State = "initializing"
	StateFetching     State = "fetching"
	StateReconciling  State = "reconciling"
	StateApplying     State = "applying"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// KindStatus is the result of reconciling one kind.
type KindStatus string

const (
	KindCompleted KindStatus = "completed"
	KindFailed    KindStatus = "failed"
	KindCancelled KindStatus = "cancelled"
)

// Outcome is what happened to one item.
type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFlagged       Outcome = "flagged"
	OutcomeFailed        Outcome = "failed"
	OutcomeDryRunPreview Outcome = "dry_run_preview"
)

// Options is the immutable configuration of a single run.
type Options struct {
	// Kinds to reconcile. Empty selects every kind. Order is always the dependency order.
	Kinds []inventory.Kind
	// DryRun computes and reports decisions without calling any target mutation.
	DryRun bool
	// Policy holds the conflict strategy of each kind.
	Policy Policy
	// Workers bounds concurrent apply calls within a kind.
	Workers int
}

// ItemResult is one line of the per-item result log.
type ItemResult struct {
	Kind     inventory.Kind          `json:"kind"`
	Key      inventory.Key           `json:"key"`
	Change   Change                  `json:"change"`
	Decision Decision                `json:"decision"`
	Outcome  Outcome                 `json:"outcome"`
	Reason   string                  `json:"reason,omitempty"`
	Changes  []inventory.FieldChange `json:"changes,omitempty"`
}

// Counts aggregates the outcomes of one kind.
type Counts struct {
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	WouldCreate  int `json:"would_create"`
	WouldUpdate  int `json:"would_update"`
	Skipped      int `json:"skipped"`
	Flagged      int `json:"flagged"`
	Failed       int `json:"failed"`
	Unchanged    int `json:"unchanged"`
	TargetOnly   int `json:"target_only"`
	SourceErrors int `json:"source_errors"`
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Created += o.Created
	c.Updated += o.Updated
	c.WouldCreate += o.WouldCreate
	c.WouldUpdate += o.WouldUpdate
	c.Skipped += o.Skipped
	c.Flagged += o.Flagged
	c.Failed += o.Failed
	c.Unchanged += o.Unchanged
	c.TargetOnly += o.TargetOnly
	c.SourceErrors += o.SourceErrors
}

func (c *Counts) record(item ItemResult) {
	switch item.Outcome {
	case OutcomeApplied:
		if item.Change == ChangeCreate {
			c.Created++
		} else {
			c.Updated++
		}
	case OutcomeDryRunPreview:
		if item.Change == ChangeCreate {
			c.WouldCreate++
		} else {
			c.WouldUpdate++
		}
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeFlagged:
		c.Flagged++
	case OutcomeFailed:
		c.Failed++
	}
}

// KindReport is the result of reconciling one kind.
type KindReport struct {
	Kind         inventory.Kind     `json:"kind"`
	Strategy     Strategy           `json:"strategy"`
	Status       KindStatus         `json:"status"`
	Error        string             `json:"error,omitempty"`
	Counts       Counts             `json:"counts"`
	Items        []ItemResult       `json:"items"`
	TargetOnly   []inventory.Key    `json:"target_only"`
	SourceErrors []*SourceDataError `json:"source_errors"`
}

// Report is the complete result of a run.
type Report struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	DryRun    bool         `json:"dry_run"`
	Cancelled bool         `json:"cancelled"`
	Error     string       `json:"error,omitempty"`
	Started   time.Time    `json:"started"`
	Finished  time.Time    `json:"finished"`
	Kinds     []KindReport `json:"kinds"`
}

// Totals sums the counts of every kind.
func (r *Report) Totals() Counts {
	var total Counts
	for _, k := range r.Kinds {
		total.Add(k.Counts)
	}
	return total
}

// Kind returns the report of kind, if it was part of the run.
func (r *Report) Kind(kind inventory.Kind) (*KindReport, bool) {
	for i := range r.Kinds {
		if r.Kinds[i].Kind == kind {
			return &r.Kinds[i], true
		}
	}
	return nil, false
}

// Item returns the result of one key.
func (k *KindReport) Item(key inventory.Key) (ItemResult, bool) {
	for _, item := range k.Items {
		if item.Key == key {
			return item, true
		}
	}
	return ItemResult{}, false
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
