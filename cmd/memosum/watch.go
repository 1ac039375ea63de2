package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Print the sum of a memo file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var mu sync.Mutex
			onChange := func(ev watch.Event) {
				mu.Lock()
				defer mu.Unlock()
				stamp := time.Now().Format("15:04:05")
				if ev.Err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", stamp, ev.Path, ev.Err)
					return
				}
				fmt.Fprintf(out, "%s %s\n", stamp, sumLine(newSumEntry(ev.Path, ev.Result)))
			}

			w, err := watch.New(args[0], watch.Options{
				Debounce: time.Duration(a.cfg.Memo.DebounceMS) * time.Millisecond,
				Engine:   a.engine,
				Logger:   a.logger.Named("watch"),
			}, onChange)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil {
				return err
			}
			a.logger.Debug("watching", zap.String("path", args[0]))
			<-ctx.Done()
			return nil
		},
	}
}
