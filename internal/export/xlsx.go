package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ib-77/memosum/internal/memo"
)

const summarySheet = "Summary"

// sheet names are capped at 31 characters and may not contain []:*?/\
var sheetNameReplacer = strings.NewReplacer("[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_", "'", "_")

func sheetName(i int, title string) string {
	name := fmt.Sprintf("%d %s", i+1, sheetNameReplacer.Replace(title))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return strings.TrimSpace(name)
}

// cellNumber keeps non-finite values readable, xlsx has no representation for them.
func cellNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatNumber(v)
	}
	return v
}

// XLSX returns a workbook (as bytes) with a Summary sheet and one sheet per tab.
func XLSX(tabs []memo.Tab) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	headers := []string{"タブ", "件数", "合計", "作成日時"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	total := 0.0
	for i, tab := range tabs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
		write(1, tab.Title)
		write(2, len(tab.Extracted.Numbers))
		write(3, cellNumber(tab.Extracted.Sum))
		write(4, tab.CreatedAt.Format("2006-01-02 15:04:05"))
		total += tab.Extracted.Sum

		if err := writeTabSheet(f, sheetName(i, tab.Title), tab); err != nil {
			return nil, fmt.Errorf("tab %q: %w", tab.Title, err)
		}
	}
	totalRow := len(tabs) + 2
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", totalRow), "合計")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", totalRow), cellNumber(total))

	_ = f.SetColWidth(summarySheet, "A", "A", 32)
	_ = f.SetColWidth(summarySheet, "B", "C", 14)
	_ = f.SetColWidth(summarySheet, "D", "D", 20)

	idx, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTabSheet(f *excelize.File, sheet string, tab memo.Tab) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetCellValue(sheet, "A1", tab.Title)
	_ = f.SetCellValue(sheet, "A2", tab.Text)
	_ = f.SetCellValue(sheet, "A4", "#")
	_ = f.SetCellValue(sheet, "B4", "数字")

	row := 5
	for i, n := range tab.Extracted.Numbers {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), cellNumber(n))
		row++
	}
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "合計")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), cellNumber(tab.Extracted.Sum))
	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	return nil
}
