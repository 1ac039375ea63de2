package export

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ib-77/memosum/internal/memo"
)

const separator = "--------------------"

// createdLayout matches how the web app printed creation times for Japanese users.
const createdLayout = "2006/1/2 15:04:05"

// FormatNumber groups thousands and keeps at most three fraction digits.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	p := message.NewPrinter(language.Japanese)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Text renders a tab as the downloadable plain-text summary. A memo holding only
// whitespace has nothing to export.
func Text(tab memo.Tab, loc *time.Location) (string, error) {
	if strings.TrimSpace(tab.Text) == "" {
		return "", fmt.Errorf("%w: %s", memo.ErrEmptyMemo, tab.Title)
	}
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", tab.Title)
	fmt.Fprintf(&b, "%s\n\n", tab.CreatedAt.In(loc).Format(createdLayout))
	fmt.Fprintf(&b, "%s\n%s\n\n", separator, tab.Text)
	fmt.Fprintf(&b, "%s\n検出された数字:\n%s\n", separator, separator)
	if len(tab.Extracted.Numbers) > 0 {
		for _, n := range tab.Extracted.Numbers {
			fmt.Fprintf(&b, "- %s\n", FormatNumber(n))
		}
	} else {
		b.WriteString("なし\n")
	}
	fmt.Fprintf(&b, "\n%s\n合計:\n%s\n%s\n", separator, separator, FormatNumber(tab.Extracted.Sum))
	return b.String(), nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[\s\v\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}/\\?%*:|"<>.()［］¥]`)
	edgeUnderscores     = regexp.MustCompile(`^_+|_+$`)
	repeatedUnderscores = regexp.MustCompile(`__+`)
)

const maxFilenameRunes = 50

// SanitizeFilename turns a tab title into a file name stem.
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled_memo"
	}
	s := unsafeFilenameChars.ReplaceAllString(name, "_")
	s = edgeUnderscores.ReplaceAllString(s, "")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > maxFilenameRunes {
		s = string(r[:maxFilenameRunes])
	}
	if s == "" {
		return "memo"
	}
	return s
}

// Filename is the text export file name for a tab.
func Filename(tab memo.Tab) string {
	return SanitizeFilename(tab.Title) + ".txt"
}
