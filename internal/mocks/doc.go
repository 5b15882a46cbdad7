// Package mocks provides test doubles for the store and auth interfaces.
// Each mock offers function fields for per-test behavior overrides plus a
// usable in-memory default implementation.
package mocks
