// Package mass lifts solo primitives to single-result channels so they can be used as
// engines by core.Locomotive, and finalizes result streams into plain values.
package mass
