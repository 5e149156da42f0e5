package cmd

import (
	"context"
	"fmt"

	"achievement-hub/core/stats"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print library statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(ctx, options{})
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(ctx), false)

		printStats(rt.stats.Get())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
}

func printStats(s stats.Snapshot) {
	fmt.Println("\n--- Library ---")
	fmt.Printf("Games:          %d\n", s.TotalGames)
	fmt.Printf("Perfect games:  %d\n", s.PerfectGames)
	fmt.Printf("Achievements:   %d/%d (%d%%)\n", s.UnlockedAchievements, s.TotalAchievements, s.PercentComplete)
}
