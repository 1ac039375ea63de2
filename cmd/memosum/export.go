package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var out, xlsx string

	cmd := &cobra.Command{
		Use:   "export [tab]",
		Short: "Save a tab as a text file, or every tab as an Excel workbook",
		Example: `  memosum export 1
  memosum export 家計簿 --out -
  memosum export --xlsx memos.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if xlsx == "" && len(args) == 0 {
				return errors.New("export needs a tab or --xlsx")
			}

			nb, err := a.notebook(ctx, true)
			if err != nil {
				return err
			}

			if xlsx != "" {
				data, err := export.XLSX(nb.Tabs())
				if err != nil {
					return fmt.Errorf("build workbook: %w", err)
				}
				if err := os.WriteFile(xlsx, data, 0o644); err != nil {
					return err
				}
				a.logger.Info("workbook exported", zap.String("path", xlsx), zap.Int("tabs", len(nb.Tabs())))
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsx)
				if len(args) == 0 {
					return nil
				}
			}

			tab, err := resolveTab(nb.Tabs(), args[0])
			if err != nil {
				return err
			}
			content, err := export.Text(tab, time.Local)
			if err != nil {
				return fmt.Errorf("export %s: %w", tab.Title, err)
			}
			if out == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}
			if out == "" {
				out = export.Filename(tab)
			}
			if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `text file to write ("-" for stdout; default derived from the title)`)
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write every tab to this .xlsx workbook")
	return cmd
}
