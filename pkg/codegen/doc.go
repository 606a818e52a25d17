// Package codegen turns a design snapshot into a runnable ratatui program.
//
// [Generate] walks the tree from the root in pre-order and emits a complete
// main.rs: the crossterm terminal setup, an event loop that quits on 'q', and a
// ui function that splits the frame according to each layout's constraints and
// renders every widget into its slot. [CargoManifest] produces the matching
// Cargo.toml.
//
// Generation is pure and deterministic: the same snapshot always yields the
// same text. It never fails on a structurally valid tree; child references that
// do not resolve are skipped.
package codegen
