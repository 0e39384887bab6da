// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// Stock decrements, weighted-average updates, bulk imports and user deletion
// each run inside exactly one RunInTransaction call. Nested calls reuse the
// transaction already stored in ctx.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds snapshot reads used by report generation.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only repeatable-read transaction so every
	// query inside fn observes the same snapshot.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
