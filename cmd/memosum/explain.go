package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ib-77/memosum/internal/export"
)

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "explain [text]",
		Short:   "Show the memo text after every rewriting stage",
		Example: `  memosum explain "（除外）1,000 + [2×3]"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "input\t%q\n", text)
			for _, snap := range a.engine.Trace(text) {
				fmt.Fprintf(tw, "%s\t%q\n", snap.Stage, snap.Text)
			}
			for _, tok := range a.engine.Tokens(text) {
				fmt.Fprintf(tw, "number\t%s\t(at %d)\n", export.FormatNumber(tok.Value), tok.Position)
			}
			fmt.Fprintf(tw, "sum\t%s\n", export.FormatNumber(a.engine.Extract(text).Sum))
			return tw.Flush()
		},
	}
}
