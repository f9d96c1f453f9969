package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inventory-sync/core/reconcile"
	"inventory-sync/feature/inventorysync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncKinds   []string
	syncDryRun  bool
	syncWorkers int
	syncYes     bool
	syncOutput  string
)

// syncCmd performs one sync run from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the record system into the inventory",
	Long: `Run a single sync: fetch every selected kind from the record system and the
inventory, diff them, and apply creates and updates per the conflict strategy of each kind.

Records that exist only in the inventory are reported and never deleted.

Examples:
  # Preview every kind without writing
  inventory-sync sync --dry-run

  # Apply devices and interfaces, confirming interactively
  inventory-sync sync --kinds device,interface

  # Apply everything non-interactively and print the report as JSON
  inventory-sync sync --yes --output json`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncKinds, "kinds", nil, "Kinds to reconcile (default all)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute decisions without writing to the inventory")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Concurrent apply calls per kind (default from config)")
	syncCmd.Flags().BoolVar(&syncYes, "yes", false, "Auto-confirm writes (non-interactive)")
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", "text", "Report format: text or json")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOutput != "text" && syncOutput != "json" {
		return &reconcile.ConfigurationError{Field: "output", Reason: "must be text or json"}
	}

	// Interrupts cancel the run; items not yet applied are reported as failed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	defer l.Sync()

	defaults, err := cfg.Sync.Options()
	if err != nil {
		return err
	}
	if syncWorkers > 0 {
		defaults.Workers = syncWorkers
	}

	src, err := openSource(ctx, cfg, l)
	if err != nil {
		return err
	}
	dst, err := openTarget(cfg, l)
	if err != nil {
		return err
	}
	archive, err := openArchive(ctx, cfg, l)
	if err != nil {
		return err
	}

	req := inventorysync.RunRequest{Kinds: syncKinds}
	if cmd.Flags().Changed("dry-run") {
		req.DryRun = &syncDryRun
	}

	runner := reconcile.NewRunner(src, dst, l.Named("runner"))
	// Unlike API runs, CLI runs stay bound to ctx so an interrupt cancels them.
	service := inventorysync.NewService(runner, archive, defaults, l.Named("sync"), inventorysync.BindToCaller())
	opts, err := service.Options(req)
	if err != nil {
		return err
	}

	if !opts.DryRun && !confirmWrites(os.Stdin) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	report, err := service.Run(ctx, req)
	if report != nil {
		if syncOutput == "json" {
			if encErr := writeReportJSON(os.Stdout, report); encErr != nil {
				return encErr
			}
		} else {
			printSyncReport(l, report)
		}
	}
	if err != nil {
		return err
	}
	if report.State == reconcile.StateFailed {
		return fmt.Errorf("sync run %s failed: %s", report.ID, report.Error)
	}
	return nil
}

// confirmWrites prompts the user for confirmation or uses the --yes flag.
func confirmWrites(in io.Reader) bool {
	if syncYes {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Type 'yes' to write changes to the inventory: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

func writeReportJSON(w io.Writer, report *reconcile.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// printSyncReport logs the per-kind counts of a run and a sample of problem items.
func printSyncReport(l *zap.Logger, report *reconcile.Report) {
	totals := report.Totals()
	l.Info("Sync report",
		zap.String("run_id", report.ID),
		zap.String("state", string(report.State)),
		zap.Bool("dry_run", report.DryRun),
		zap.Bool("cancelled", report.Cancelled),
		zap.Duration("duration", report.Duration()),
		zap.Int("created", totals.Created),
		zap.Int("updated", totals.Updated),
		zap.Int("would_create", totals.WouldCreate),
		zap.Int("would_update", totals.WouldUpdate),
		zap.Int("flagged", totals.Flagged),
		zap.Int("failed", totals.Failed),
	)

	for _, k := range report.Kinds {
		l.Info("Kind result",
			zap.String("kind", k.Kind.String()),
			zap.String("status", string(k.Status)),
			zap.String("strategy", string(k.Strategy)),
			zap.String("error", k.Error),
			zap.Any("counts", k.Counts),
		)

		const maxShow = 5
		shown := 0
		for _, item := range k.Items {
			if item.Outcome != reconcile.OutcomeFailed && item.Outcome != reconcile.OutcomeFlagged {
				continue
			}
			if shown == maxShow {
				l.Info("Additional items not shown", zap.String("kind", k.Kind.String()))
				break
			}
			l.Warn("Item needs attention",
				zap.String("kind", k.Kind.String()),
				zap.Stringer("key", item.Key),
				zap.String("outcome", string(item.Outcome)),
				zap.String("reason", item.Reason),
			)
			shown++
		}
	}
}
