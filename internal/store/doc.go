// Package store keeps completed analysis runs.
//
// Two implementations of core.RunStore are provided: an in-memory store for
// the CLI, tests and single-process deployments, and a PostgreSQL store
// that persists run metadata as JSONB and bulk-loads canonical and variance
// records with COPY.
package store
