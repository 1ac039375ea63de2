package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/export"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <legacy.json>",
		Short: "Replace the stored tabs with a dump of the web app's saved state",
		Long: `Reads the JSON the browser version kept in localStorage ({"tabs": [...],
"activeTabId": ...}), validates it, and replaces every stored tab with its content.
Sums are recalculated with the current engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			state, err := export.DecodeLegacyState(f)
			if err != nil {
				return err
			}

			nb, err := a.notebook(ctx, true)
			if err != nil {
				return err
			}
			if err := nb.Import(ctx, state.Tabs, state.ActiveID); err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if state.Theme != "" {
				if err := nb.SetTheme(ctx, state.Theme); err != nil {
					return err
				}
			}

			a.logger.Info("legacy state imported",
				zap.String("file", args[0]), zap.Int("tabs", len(nb.Tabs())))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tabs\n", len(nb.Tabs()))
			return nil
		},
	}
}
