package memocalc

import (
	"regexp"
	"strings"
)

// space is the JavaScript \s class. Go's \s is ASCII only, which would leave ideographic
// spaces (U+3000) between an operand and its operator unmatched.
const space = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]*`

// number is a literal with an optional leading minus and optional fraction.
const number = `(-?\d+(?:\.\d+)?)`

var (
	parenPattern      = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)
	digitCountPattern = regexp.MustCompile(`\d+(?:\.\d+)?` + space + `桁`)
	thousandsPattern  = regexp.MustCompile(`(-?\b\d+),(\d{3}\b)`)
	equationPattern   = regexp.MustCompile(number + space + `([+\-×÷*/])` + space + number + space + `=` + space + number)
	bracketPattern    = regexp.MustCompile(`\[([^\]]*)\]|［([^］]*)］`)
	mulDivPattern     = regexp.MustCompile(number + space + `(×|\*|÷|/)` + space + number)
	addSubPattern     = regexp.MustCompile(number + space + `([+\-])` + space + number)
	literalPattern    = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

// isBlank reports text that holds nothing but whitespace.
func isBlank(text string) bool {
	return strings.TrimFunc(text, isSpace) == ""
}
