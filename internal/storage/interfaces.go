// Package storage defines the upstream swap provider contract. The core
// assumes the returned series is fully materialized before a run starts:
// no retries, pagination, caching or partial results.
package storage

import (
	"context"
	"time"

	"uniswap-v3-backtester/internal/domain"
)

// SwapStore provides access to historical swap storage.
type SwapStore interface {
	// Insert adds a new swap. Returns ErrDuplicateKey if
	// (pool_address, tx_hash, log_index) exists.
	Insert(ctx context.Context, s *domain.Swap) error

	// InsertBulk adds multiple swaps atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, swaps []*domain.Swap) error

	// GetByPool retrieves all swaps for a pool, ordered by block
	// timestamp ASC. The pool address is matched case-insensitively.
	GetByPool(ctx context.Context, poolAddress string) ([]*domain.Swap, error)

	// GetByTimeRange retrieves swaps for a pool with block timestamps
	// within [start, end] (inclusive), ordered by block timestamp ASC.
	GetByTimeRange(ctx context.Context, poolAddress string, start, end time.Time) ([]*domain.Swap, error)
}
