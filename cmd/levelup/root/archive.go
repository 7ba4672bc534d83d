package root

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmuzan/samplepomodoro/internal/ops"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every progress record and the boss to a gzip JSON-lines archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, stores, cleanup, err := openStores(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now().UTC()
			if out == "" {
				out = filepath.Join("exports", "levelup-"+now.Format("20060102T150405Z")+".jsonl.gz")
			}
			sum, err := ops.ExportFile(ctx, out, ops.Stores{
				Players: stores.Players,
				Bosses:  stores.Bosses,
				BossIDs: []string{cfg.Boss.ID},
			}, now)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Good.Render(IconBox+" exported"), out)
			fmt.Fprintln(cmd.OutOrStdout(), LabelValue("Players", sum.Players), " ", LabelValue("Bosses", sum.Bosses))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (default exports/levelup-<time>.jsonl.gz)")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Load an export archive into the configured store",
		Long:  "Records in the archive overwrite stored records with the same username or boss id. Others are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, stores, cleanup, err := openStores(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := ops.ImportFile(ctx, args[0], ops.Stores{Players: stores.Players, Bosses: stores.Bosses}, cfg.Rules)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Good.Render(IconDone+" imported"), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), LabelValue("Players", sum.Players), " ", LabelValue("Bosses", sum.Bosses))
			return nil
		},
	}
	return cmd
}
