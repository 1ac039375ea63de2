// Package memocalc finds the numbers in a free-form memo and adds them up.
//
// The text is rewritten by a fixed sequence of stages before numbers are collected:
//
//  1. full-width digits become ASCII digits
//  2. (...) and （...） asides are removed (one scan, not recursive)
//  3. "<n>桁" digit-count annotations are removed
//  4. thousands separators are collapsed until none is left
//  5. "a op b = c" equations are replaced by their answer c, leftmost first
//  6. [...] and ［...］ groups are replaced by the sum of their evaluated content,
//     innermost first
//  7. × * ÷ / are evaluated leftmost first, then + and -
//
// Whatever literals remain, left to right, are the memo's numbers. Malformed fragments
// are never reported; they simply contribute fewer numbers. The engine keeps no state
// between calls and may be used from any number of goroutines.
package memocalc
