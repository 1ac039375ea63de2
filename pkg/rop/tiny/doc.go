// Package tiny provides a minimal fluent Chain[T] for synchronous
// composition of Result[T] values.
//
// - Start/FromValue: create a Chain
// - Map: transform the value, keeping the result id
// - Fixpoint: repeat a transform until its output equals its input
// - Rewrite: repeat a single-step rewrite while it still finds something to rewrite
// - Ensure: trigger side effects
// - Finally: reduce to a concrete value via handlers
//
// Both loops are bounded; running out of iterations fails the chain with a
// *LimitError carrying the last value produced.
package tiny
