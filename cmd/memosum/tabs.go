package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ib-77/memosum/internal/export"
	"github.com/ib-77/memosum/internal/memo"
)

var errAmbiguousTab = errors.New("ambiguous tab")

// resolveTab finds a tab by 1-based position, id prefix, exact title, or the nearest title
// by edit distance.
func resolveTab(tabs []memo.Tab, ref string) (memo.Tab, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return memo.Tab{}, fmt.Errorf("%w: empty reference", memo.ErrTabNotFound)
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tabs) {
		return tabs[n-1], nil
	}

	var byID []memo.Tab
	lower := strings.ToLower(ref)
	for _, t := range tabs {
		if strings.HasPrefix(t.ID.String(), lower) {
			byID = append(byID, t)
		}
		if t.Title == ref {
			return t, nil
		}
	}
	switch len(byID) {
	case 1:
		return byID[0], nil
	case 0:
	default:
		return memo.Tab{}, fmt.Errorf("%w: id prefix %q matches %d tabs", errAmbiguousTab, ref, len(byID))
	}

	best, bestDist, tie := -1, 0, false
	for i, t := range tabs {
		d := levenshtein.ComputeDistance(strings.ToLower(t.Title), lower)
		switch {
		case best < 0 || d < bestDist:
			best, bestDist, tie = i, d, false
		case d == bestDist:
			tie = true
		}
	}
	limit := max(utf8.RuneCountInString(ref), 2) / 2
	if best < 0 || bestDist > limit {
		return memo.Tab{}, fmt.Errorf("%w: %q", memo.ErrTabNotFound, ref)
	}
	if tie {
		return memo.Tab{}, fmt.Errorf("%w: %q is as close to several titles", errAmbiguousTab, ref)
	}
	return tabs[best], nil
}

func newTabsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Manage the stored memo tabs",
		Long: `Tabs are addressed by their 1-based position, a prefix of their id, or their
title. A title that is slightly off still finds the closest tab.`,
	}
	cmd.AddCommand(
		newTabsListCmd(a),
		newTabsAddCmd(a),
		newTabsShowCmd(a),
		newTabsRenameCmd(a),
		newTabsRemoveCmd(a),
		newTabsClearCmd(a),
	)
	return cmd
}

func newTabsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tabs with their sums",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := a.notebook(cmd.Context(), true)
			if err != nil {
				return err
			}
			active := nb.Active().ID

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\t#\tID\tTITLE\tNUMBERS\tSUM")
			for i, t := range nb.Tabs() {
				marker := ""
				if t.ID == active {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n",
					marker, i+1, t.ID.String()[:8], t.Title,
					len(t.Extracted.Numbers), export.FormatNumber(t.Extracted.Sum))
			}
			fmt.Fprintf(tw, "\t\t\t%d/%d tabs\t\t\n", len(nb.Tabs()), nb.MaxTabs())
			return tw.Flush()
		},
	}
}

func newTabsAddCmd(a *app) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a tab, optionally with memo text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nb, err := a.notebook(ctx, true)
			if err != nil {
				return err
			}

			tab, err := nb.Add(ctx)
			if err != nil {
				return err
			}
			if title != "" {
				if tab, err = nb.Rename(ctx, tab.ID, title); err != nil {
					return err
				}
			}
			if len(args) > 0 {
				if err := nb.Edit(ctx, tab.ID, strings.Join(args, " ")); err != nil {
					return err
				}
			}
			return printTab(cmd.OutOrStdout(), nb, tab.ID)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "tab title")
	return cmd
}

func newTabsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tab>",
		Short: "Print a tab's memo, numbers and sum",
		Args:  cobra.ExactArgs(1),
		RunE: withTab(a, func(cmd *cobra.Command, nb *memo.Notebook, tab memo.Tab, _ []string) error {
			return printTab(cmd.OutOrStdout(), nb, tab.ID)
		}),
	}
}

func newTabsRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tab> <title>",
		Short: "Rename a tab; an empty title restores the default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withTab(a, func(cmd *cobra.Command, nb *memo.Notebook, tab memo.Tab, rest []string) error {
			renamed, err := nb.Rename(cmd.Context(), tab.ID, strings.Join(rest, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", tab.Title, renamed.Title)
			return nil
		}),
	}
}

func newTabsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <tab>",
		Aliases: []string{"close"},
		Short:   "Close a tab",
		Args:    cobra.ExactArgs(1),
		RunE: withTab(a, func(cmd *cobra.Command, nb *memo.Notebook, tab memo.Tab, _ []string) error {
			if err := nb.CloseTab(cmd.Context(), tab.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %s\n", tab.Title)
			return nil
		}),
	}
}

func newTabsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <tab>",
		Short: "Empty a tab's memo",
		Args:  cobra.ExactArgs(1),
		RunE: withTab(a, func(cmd *cobra.Command, nb *memo.Notebook, tab memo.Tab, _ []string) error {
			if err := nb.Clear(cmd.Context(), tab.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", tab.Title)
			return nil
		}),
	}
}

type tabFunc func(cmd *cobra.Command, nb *memo.Notebook, tab memo.Tab, rest []string) error

// withTab opens the notebook and resolves args[0] before calling fn with the remaining args.
func withTab(a *app, fn tabFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		nb, err := a.notebook(cmd.Context(), true)
		if err != nil {
			return err
		}
		tab, err := resolveTab(nb.Tabs(), args[0])
		if err != nil {
			return err
		}
		return fn(cmd, nb, tab, args[1:])
	}
}

func printTab(w io.Writer, nb *memo.Notebook, id uuid.UUID) error {
	tab, err := nb.Tab(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", tab.Title, tab.ID)
	fmt.Fprintf(w, "作成日時: %s\n", tab.CreatedAt.In(time.Local).Format("2006/1/2 15:04:05"))
	if tab.Text != "" {
		fmt.Fprintf(w, "\n%s\n\n", tab.Text)
	}
	_, err = fmt.Fprintln(w, sumLine(newSumEntry(tab.Title, tab.Extracted)))
	return err
}
