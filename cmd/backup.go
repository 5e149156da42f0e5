package cmd

import (
	"context"
	"errors"
	"fmt"

	"achievement-hub/core/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the library document to or from object storage",
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local library document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := backupHub(ctx)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(ctx), false)

		if err := rt.backup.Push(ctx, rt.store.Document()); err != nil {
			return err
		}
		rt.logger.Info("Library uploaded", zap.Int("games", rt.store.Len()))
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull [snapshot-key]",
	Short: "Replace the local library document with the latest backup or a snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := backupHub(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = rt.logger.Sync() }()

		var doc *library.Document
		if len(args) == 1 {
			doc, err = rt.backup.PullSnapshot(ctx, args[0])
		} else {
			doc, err = rt.backup.Pull(ctx)
		}
		if errors.Is(err, library.ErrNotFound) {
			return fmt.Errorf("no backup found in bucket %s", rt.cfg.Storage.Bucket)
		}
		if err != nil {
			return err
		}

		// Written straight to the local file so the restore is not uploaded again.
		if err := rt.local.Save(ctx, doc); err != nil {
			return err
		}
		rt.logger.Info("Library restored", zap.String("path", rt.local.Path()), zap.Int("games", len(doc.Games)))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := backupHub(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = rt.logger.Sync() }()

		snaps, err := rt.backup.Snapshots(ctx)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Printf("%s  %8d bytes  %s\n", s.LastModified.Format("2006-01-02 15:04:05"), s.Size, s.Key)
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupPushCmd, backupPullCmd, backupListCmd)
	RootCmd.AddCommand(backupCmd)
}

func backupHub(ctx context.Context) (*hub, error) {
	rt, err := bootstrap(ctx, options{})
	if err != nil {
		return nil, err
	}
	if rt.backup == nil {
		return nil, fmt.Errorf("backups are disabled or the object store is unreachable (STORAGE_ENABLED)")
	}
	return rt, nil
}
