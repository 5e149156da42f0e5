package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var titleCmd = &cobra.Command{
	Use:   "title [identifier]",
	Short: "Re-fetch one title (e.g. steam-440) from its platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(ctx, options{providers: true})
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(ctx), false)

		rt.logger.Info("Refreshing title", zap.String("identifier", args[0]))
		game, err := rt.sync.RefreshTitle(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Println("\n--- Title ---")
		fmt.Printf("ID:             %s\n", game.ID)
		fmt.Printf("Name:           %s\n", game.Name)
		fmt.Printf("Platform:       %s\n", game.Platform)
		fmt.Printf("Achievements:   %d/%d (%d%%)\n", game.UnlockedCount(), game.TotalCount(), game.Percentage())
		if game.PlaytimeMinutes >= 0 {
			fmt.Printf("Playtime:       %dh%02dm\n", game.PlaytimeMinutes/60, game.PlaytimeMinutes%60)
		}
		if game.HowLongToBeat.Found() {
			fmt.Printf("Main story:     %.1fh\n", game.HowLongToBeat.MainStory)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(titleCmd)
}
