package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/config"
	"github.com/ib-77/memosum/internal/logging"
	"github.com/ib-77/memosum/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes the command line in args and releases the database and logger afterwards,
// including when the command failed.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:   "memosum",
		Short: "Memo pad that adds up the numbers in your notes",
		Long: `memosum finds the numbers in free-form memo text and adds them up.

Bracketed arithmetic such as [120×3] is evaluated first, parentheticals are
ignored, and "1,000" style grouping is understood. Full-width input works too.

Run without arguments to open the tabbed memo editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd == cmd.Root())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $MEMOSUM_CONFIG or ~/.config/memosum/config.toml)")

	root.AddCommand(
		newSumCmd(a),
		newExplainCmd(a),
		newWatchCmd(a),
		newTabsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) runTUI(ctx context.Context) error {
	nb, err := a.notebook(ctx, false)
	if err != nil {
		return err
	}

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}
	return tui.Run(ctx, nb, tui.Options{
		ExportDir: exportDir,
		Logger:    a.logger.Named("tui"),
		OnTheme: func(id string) {
			a.cfg.UI.Theme = id
			if err := config.SaveFile(a.cfgFile(), a.cfg); err != nil {
				a.logger.Warn("saving theme to config", zap.Error(err))
			}
		},
	})
}

func (a *app) logOptions(interactive bool) logging.Options {
	opts := logging.Options{
		Verbose: a.verbose || a.cfg.Log.Verbose,
		JSON:    a.cfg.Log.JSON,
	}
	if interactive {
		opts.File = a.cfg.Log.File
	}
	return opts
}
