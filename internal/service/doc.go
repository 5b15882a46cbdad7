// Package service orchestrates the domain operations: it coordinates
// stores, applies default values and update-merge semantics, and signals
// the realtime layer about task mutations.
package service
