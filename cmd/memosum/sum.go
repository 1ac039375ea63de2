package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ib-77/memosum/internal/export"
	"github.com/ib-77/memosum/pkg/memocalc"
)

// finite keeps JSON output valid for overflowing memos: non-finite values become strings.
type finite float64

func (f finite) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

type sumEntry struct {
	Source  string   `json:"source" yaml:"source"`
	Numbers []finite `json:"numbers" yaml:"numbers"`
	Sum     finite   `json:"sum" yaml:"sum"`
}

func newSumEntry(source string, res memocalc.Result) sumEntry {
	e := sumEntry{Source: source, Numbers: make([]finite, len(res.Numbers)), Sum: finite(res.Sum)}
	for i, n := range res.Numbers {
		e.Numbers[i] = finite(n)
	}
	return e
}

func newSumCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sum [files...]",
		Short: "Add up the numbers in memo files or stdin",
		Long: `Reads each file (or stdin when none is given), extracts its numbers and prints
them with their sum. Several files are extracted concurrently.`,
		Example: `  echo "りんご 120円 [バナナ 80×3]" | memosum sum
  memosum sum --format json groceries.txt rent.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, texts, err := readSources(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			results := a.engine.ExtractAll(cmd.Context(), texts, a.cfg.Batch.Lines)
			entries := make([]sumEntry, len(results))
			for _, r := range results {
				if r.Err != nil {
					return fmt.Errorf("extract %s: %w", sources[r.Index], r.Err)
				}
				entries[r.Index] = newSumEntry(sources[r.Index], r.Result)
			}
			return writeSums(cmd.OutOrStdout(), format, entries)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func readSources(stdin io.Reader, paths []string) ([]string, []string, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
		return []string{"-"}, []string{string(data)}, nil
	}

	texts := make([]string, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		texts[i] = string(data)
	}
	return paths, texts, nil
}

func writeSums(w io.Writer, format string, entries []sumEntry) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, e := range entries {
			line := sumLine(e)
			if len(entries) > 1 {
				line = e.Source + ": " + line
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func sumLine(e sumEntry) string {
	if len(e.Numbers) == 0 {
		return "0"
	}
	parts := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		parts[i] = export.FormatNumber(float64(n))
	}
	return strings.Join(parts, " + ") + " = " + export.FormatNumber(float64(e.Sum))
}
