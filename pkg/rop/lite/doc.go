// Package lite provides lightweight channel-lifted helpers that wrap solo
// primitives for concurrent pipelines. It is designed for simple fan-out/fan-in
// flows without custom cancellation handling.
//
// Common usage:
// - Turnout: execute an engine over an input channel with a fixed number of lines
// - Try: lift solo.Try over channels
// - Finally: map Result[In] to Out on completion
package lite
