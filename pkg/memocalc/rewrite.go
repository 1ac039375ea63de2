package memocalc

import (
	"context"
)

// reduceEquation replaces the leftmost "a op b = c" with c. Operands never reach the sum.
func reduceEquation(_ context.Context, text string) (string, bool) {
	m := equationPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, false
	}
	return text[:m[0]] + text[m[8]:m[9]] + text[m[1]:], true
}

// reduceMulDiv evaluates the leftmost multiplication or division. A zero divisor or an
// unreadable operand deletes the whole expression.
func reduceMulDiv(_ context.Context, text string) (string, bool) {
	m := mulDivPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, false
	}

	a, okA := parseNumber(text[m[2]:m[3]])
	b, okB := parseNumber(text[m[6]:m[7]])
	if !okA || !okB {
		return splice(text, m, ""), true
	}

	switch text[m[4]:m[5]] {
	case "×", "*":
		return splice(text, m, formatNumber(a*b)), true
	default:
		if b == 0 {
			return splice(text, m, ""), true
		}
		return splice(text, m, formatNumber(a/b)), true
	}
}

// reduceAddSub evaluates the leftmost addition or subtraction. A negative result keeps
// its minus sign in the text, where the next scan may read it as an operator.
func reduceAddSub(_ context.Context, text string) (string, bool) {
	m := addSubPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, false
	}

	a, okA := parseNumber(text[m[2]:m[3]])
	b, okB := parseNumber(text[m[6]:m[7]])
	if !okA || !okB {
		return splice(text, m, ""), true
	}

	if text[m[4]:m[5]] == "+" {
		return splice(text, m, formatNumber(a+b)), true
	}
	return splice(text, m, formatNumber(a-b)), true
}

func splice(text string, m []int, replacement string) string {
	return text[:m[0]] + replacement + text[m[1]:]
}
