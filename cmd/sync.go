package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	hubsync "achievement-hub/feature/sync"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch the full library of every configured platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, hubsync.KindScan)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch recently played titles and merge those that changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, hubsync.KindRefresh)
	},
}

func init() {
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(refreshCmd)
}

func runSync(cmd *cobra.Command, kind hubsync.Kind) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, options{providers: true, sinks: true})
	if err != nil {
		return err
	}
	// The run saves on its own; close only releases connections.
	defer rt.close(context.WithoutCancel(ctx), false)

	if rt.registry.Len() == 0 {
		return fmt.Errorf("no platform configured")
	}

	run := rt.sync.Scan
	if kind == hubsync.KindRefresh {
		run = rt.sync.Refresh
	}
	report, err := run(ctx)
	if err != nil {
		return err
	}

	printReport(report)
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%s finished with %d provider failures", kind, len(failed))
	}
	return nil
}

func printReport(r *hubsync.Report) {
	fmt.Printf("\n--- %s %s ---\n", r.Kind, r.RunID)
	for _, p := range r.Providers {
		status := "ok"
		if p.Error != "" {
			status = p.Error
		}
		fmt.Printf("%-18s fetched %4d  merged %4d  %s\n", p.Provider, p.Fetched, p.Merged, status)
	}
	fmt.Println("----------------------------------")
	fmt.Printf("Merged:         %d\n", r.Merged)
	fmt.Printf("Unchanged:      %d\n", r.Skipped)
	fmt.Printf("Estimated:      %d (%d failed)\n", r.Enriched, r.EnrichFailed)
	fmt.Printf("Duration:       %s\n", r.Duration().Round(time.Millisecond))
	if r.Cancelled {
		fmt.Println("Cancelled:      partial results kept")
	}
	if r.SaveError != "" {
		fmt.Printf("Save error:     %s\n", r.SaveError)
	}
	printStats(r.Stats)
}
