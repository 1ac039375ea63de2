// Package solo contains single-value, synchronous primitives that operate
// on Result[T]. They are the building blocks for the tiny chain and for the
// channel-lifted stages in mass.
//
// Highlights:
// - Succeed: wrap a value as a successful Result[T]
// - Map: transform successful values, keeping the result id
// - Try: call a function (Out, error); cancellation errors become Cancel
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
