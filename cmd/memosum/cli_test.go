package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ib-77/memosum/internal/memo"
)

// testConfig writes a config file that keeps the database and log inside a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[database]\npath = %q\n\n[log]\nfile = %q\n",
		filepath.Join(dir, "memosum.db"), filepath.Join(dir, "memosum.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, cfg, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--config", cfg}, args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

func mustRun(t *testing.T, cfg, stdin string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfg, stdin, args...)
	require.NoError(t, err, "memosum %s", strings.Join(args, " "))
	return out
}

func TestSum_Stdin(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, "120 + 240 = 360\n", mustRun(t, cfg, "りんご 120円 [バナナ 80×3]", "sum"))
	assert.Equal(t, "0\n", mustRun(t, cfg, "数字なし", "sum"))
}

func TestSum_FilesJSON(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("家賃 50,000 (税込)"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("[1+2] 3"), 0o600))

	out := mustRun(t, cfg, "", "sum", "--format", "json", a, b)

	var entries []struct {
		Source  string    `json:"source"`
		Numbers []float64 `json:"numbers"`
		Sum     float64   `json:"sum"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0].Source)
	assert.Equal(t, []float64{50000}, entries[0].Numbers)
	assert.Equal(t, b, entries[1].Source)
	assert.Equal(t, []float64{3, 3}, entries[1].Numbers)
	assert.Equal(t, float64(6), entries[1].Sum)
}

func TestSum_Text_MultipleFiles(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("1000 2000"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("なし"), 0o600))

	out := mustRun(t, cfg, "", "sum", a, b)
	assert.Equal(t, a+": 1,000 + 2,000 = 3,000\n"+b+": 0\n", out)
}

func TestSum_YAML(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, cfg, "1 2", "sum", "-f", "yaml")

	var entries []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "-", entries[0]["source"])
	assert.Equal(t, 3, entries[0]["sum"])
}

func TestSum_NonFiniteJSON(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, cfg, strings.Repeat("9", 400), "sum", "-f", "json")
	assert.Contains(t, out, `"+Inf"`)
}

func TestSum_Errors(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCLI(t, cfg, "1", "sum", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = runCLI(t, cfg, "", "sum", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExplain(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, cfg, "", "explain", "（除外）1,000", "+", "[2×3]")

	assert.Contains(t, out, "exclusion")
	assert.Contains(t, out, "brackets")
	assert.Contains(t, out, `"1000 + 6"`)
	assert.Contains(t, out, "1,000")
	assert.Contains(t, out, "(at 0)")
	assert.Regexp(t, `sum\s+1,006`, out)
}

func TestTabs_Lifecycle(t *testing.T) {
	cfg := testConfig(t)

	out := mustRun(t, cfg, "", "tabs", "add", "--title", "家計簿", "100", "200")
	assert.Contains(t, out, "家計簿")
	assert.Contains(t, out, "100 + 200 = 300")

	out = mustRun(t, cfg, "", "tabs", "list")
	assert.Contains(t, out, "メモ 1")
	assert.Contains(t, out, "家計簿")
	assert.Contains(t, out, "2/10 tabs")
	assert.Regexp(t, `\*\s+2\s`, out)

	out = mustRun(t, cfg, "", "tabs", "rename", "家計", "食費")
	assert.Equal(t, "家計簿 -> 食費\n", out)

	out = mustRun(t, cfg, "", "tabs", "show", "2")
	assert.Contains(t, out, "食費")
	assert.Contains(t, out, "100 + 200 = 300")

	assert.Equal(t, "cleared 食費\n", mustRun(t, cfg, "", "tabs", "clear", "食費"))
	out = mustRun(t, cfg, "", "tabs", "show", "2")
	assert.True(t, strings.HasSuffix(out, "\n0\n"), out)

	assert.Equal(t, "closed 食費\n", mustRun(t, cfg, "", "tabs", "rm", "2"))
	assert.Contains(t, mustRun(t, cfg, "", "tabs", "ls"), "1/10 tabs")

	_, err := runCLI(t, cfg, "", "tabs", "show", "まったく違う名前")
	assert.ErrorIs(t, err, memo.ErrTabNotFound)
}

func TestTabs_Limit(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[database]\npath = %q\n\n[memo]\nmax_tabs = 2\n", filepath.Join(dir, "memosum.db"))
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

	mustRun(t, cfg, "", "tabs", "add")
	_, err := runCLI(t, cfg, "", "tabs", "add")
	assert.ErrorIs(t, err, memo.ErrTabLimit)
}

func TestExport(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	mustRun(t, cfg, "", "tabs", "add", "--title", "家計簿", "500", "250")

	txt := filepath.Join(dir, "kakeibo.txt")
	assert.Equal(t, "wrote "+txt+"\n", mustRun(t, cfg, "", "export", "家計簿", "--out", txt))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "500 250")
	assert.Contains(t, string(data), "750")

	out := mustRun(t, cfg, "", "export", "2", "--out", "-")
	assert.Equal(t, string(data), out)

	book := filepath.Join(dir, "all.xlsx")
	mustRun(t, cfg, "", "export", "--xlsx", book)
	f, err := excelize.OpenFile(book)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Summary", f.GetSheetName(0))
	assert.Len(t, f.GetSheetList(), 3)

	_, err = runCLI(t, cfg, "", "export")
	assert.Error(t, err)
	_, err = runCLI(t, cfg, "", "export", "1")
	assert.ErrorIs(t, err, memo.ErrEmptyMemo)
}

const legacyDump = `{
  "tabs": [
    {"id": "6f1c2c8e-4a4b-4a8e-9a7e-1f2d3c4b5a69", "title": "家計簿",
     "memoText": "家賃 50,000 光熱費 [3000+4500]", "createdAt": 1714550400000},
    {"id": "tab-2", "title": "買い物", "memoText": "卵 250"}
  ],
  "activeTabId": "tab-2",
  "theme": "sakura"
}`

func TestImport(t *testing.T) {
	cfg := testConfig(t)
	dump := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(dump, []byte(legacyDump), 0o600))

	assert.Equal(t, "imported 2 tabs\n", mustRun(t, cfg, "", "import", dump))

	out := mustRun(t, cfg, "", "tabs", "show", "6f1c")
	assert.Contains(t, out, uuid.MustParse("6f1c2c8e-4a4b-4a8e-9a7e-1f2d3c4b5a69").String())
	assert.Contains(t, out, "50,000 + 7,500 = 57,500")

	out = mustRun(t, cfg, "", "tabs", "list")
	assert.Regexp(t, `\*\s+2\s+\S+\s+買い物`, out)
}

func TestImport_Invalid(t *testing.T) {
	cfg := testConfig(t)
	dump := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(dump, []byte(`{"tabs": "nope"}`), 0o600))

	_, err := runCLI(t, cfg, "", "import", dump)
	assert.Error(t, err)
}

func TestResolveTab(t *testing.T) {
	tabs := []memo.Tab{
		{ID: uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"), Title: "メモ 1"},
		{ID: uuid.MustParse("abbbbbbb-0000-4000-8000-000000000002"), Title: "家計簿"},
		{ID: uuid.MustParse("cccccccc-0000-4000-8000-000000000003"), Title: "食費"},
	}

	cases := []struct {
		ref  string
		want int
		err  error
	}{
		{ref: "1", want: 0},
		{ref: "3", want: 2},
		{ref: "ab", want: 1},
		{ref: "CCCC", want: 2},
		{ref: "家計簿", want: 1},
		{ref: "家計", want: 1},
		{ref: "食費 ", want: 2},
		{ref: "a", err: errAmbiguousTab},
		{ref: "4", err: memo.ErrTabNotFound},
		{ref: "xyz", err: memo.ErrTabNotFound},
		{ref: "", err: memo.ErrTabNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.ref, func(t *testing.T) {
			got, err := resolveTab(tabs, tc.ref)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tabs[tc.want].ID, got.ID)
		})
	}
}

func TestResolveTab_FuzzyTie(t *testing.T) {
	tabs := []memo.Tab{
		{ID: uuid.New(), Title: "メモ 1"},
		{ID: uuid.New(), Title: "メモ 2"},
	}
	_, err := resolveTab(tabs, "メモ 3")
	assert.ErrorIs(t, err, errAmbiguousTab)
}
