// Package reconcile converges a managed inventory toward an authoritative record system.
//
// The package consumes two adapters, a SourceAdapter (read only) and a TargetAdapter
// (read and apply), and reconciles each entity kind independently:
//
//  1. Fetch: the source and target snapshots of a kind are fetched concurrently.
//  2. Diff: keys are partitioned into to_create, to_update and unchanged; keys only
//     present in the target are reported as target_only and never deleted.
//  3. Decide: every create and update is passed through the conflict policy of its kind
//     (overwrite, skip or flag). The decision table is pure data.
//  4. Apply: accepted decisions are applied through a bounded worker pool sized to the
//     smaller of the configured worker count and the target adapter's declared limit.
//     In dry-run mode nothing is applied and the would-be outcome is recorded instead.
//
// # Failure isolation
//
// A failure to fetch one kind marks only that kind as failed; a failing apply call marks
// only that item as failed. Only configuration errors, or being unable to reach either
// system at all, abort a run. The Runner always returns a complete Report describing
// what happened to every item.
//
// # Cancellation
//
// Cancelling the run context stops the run between kinds and between apply calls.
// Apply calls already in flight are allowed to complete.
//
// # Usage Example
//
//	runner := reconcile.NewRunner(source, target, logger, reconcile.WithMetrics(m))
//	report, err := runner.Run(ctx, reconcile.Options{
//	    Kinds:   inventory.Kinds(),
//	    Policy:  reconcile.Policy{inventory.KindLocation: reconcile.StrategyOverwrite},
//	    Workers: 8,
//	    DryRun:  true,
//	})
package reconcile
