// Package postgres implements the store interfaces on PostgreSQL. It
// translates driver-level errors into the sentinel errors the store
// contracts promise, and scopes every task query by participation.
package postgres
