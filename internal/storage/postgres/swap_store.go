package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/storage"
)

// SwapStore implements storage.SwapStore using PostgreSQL. Swaps live in
// uniswap_v3_swaps and are joined with blocks for their timestamps.
type SwapStore struct {
	pool *Pool
}

// NewSwapStore creates a new SwapStore.
func NewSwapStore(pool *Pool) *SwapStore {
	return &SwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

const insertBlockQuery = `
	INSERT INTO blocks (block_number, block_date)
	VALUES ($1, $2)
	ON CONFLICT (block_number) DO NOTHING
`

const insertSwapQuery = `
	INSERT INTO uniswap_v3_swaps (
		pool_address, tx_hash, log_index, block_number, tick,
		volume_token0, volume_token1, liquidity, sqrt_price_x96
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const selectSwapsQuery = `
	SELECT s.pool_address, s.tx_hash, s.log_index, s.block_number, s.tick,
	       s.volume_token0::text, s.volume_token1::text, s.liquidity::text,
	       s.sqrt_price_x96::text, b.block_date
	FROM uniswap_v3_swaps s
	JOIN blocks b ON s.block_number = b.block_number
`

// Insert adds a new swap and its block row. Returns ErrDuplicateKey if
// (pool_address, tx_hash, log_index) exists.
func (s *SwapStore) Insert(ctx context.Context, swap *domain.Swap) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertSwap(ctx, tx, swap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InsertBulk adds multiple swaps atomically. Fails entire batch on any
// duplicate.
func (s *SwapStore) InsertBulk(ctx context.Context, swaps []*domain.Swap) error {
	if len(swaps) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, swap := range swaps {
		if err := insertSwap(ctx, tx, swap); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// insertSwap writes one block row and one swap row inside tx.
func insertSwap(ctx context.Context, tx pgx.Tx, swap *domain.Swap) error {
	if swap == nil || swap.PoolAddress == "" {
		return storage.ErrInvalidInput
	}

	if _, err := tx.Exec(ctx, insertBlockQuery, swap.BlockNumber, swap.Timestamp); err != nil {
		return fmt.Errorf("insert block: %w", err)
	}

	_, err := tx.Exec(ctx, insertSwapQuery,
		strings.ToLower(swap.PoolAddress),
		swap.TxHash,
		swap.LogIndex,
		swap.BlockNumber,
		swap.Tick,
		swap.VolumeToken0,
		swap.VolumeToken1,
		swap.Liquidity,
		swap.SqrtPriceX96,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

// GetByPool retrieves all swaps for a pool, ordered by block timestamp
// ASC.
func (s *SwapStore) GetByPool(ctx context.Context, poolAddress string) ([]*domain.Swap, error) {
	query := selectSwapsQuery + `
	WHERE s.pool_address = $1
	ORDER BY b.block_date ASC, s.id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.ToLower(poolAddress))
	if err != nil {
		return nil, fmt.Errorf("get swaps by pool: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// GetByTimeRange retrieves swaps for a pool with block timestamps within
// [start, end] (inclusive), ordered by block timestamp ASC.
func (s *SwapStore) GetByTimeRange(ctx context.Context, poolAddress string, start, end time.Time) ([]*domain.Swap, error) {
	query := selectSwapsQuery + `
	WHERE s.pool_address = $1 AND b.block_date BETWEEN $2 AND $3
	ORDER BY b.block_date ASC, s.id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.ToLower(poolAddress), start, end)
	if err != nil {
		return nil, fmt.Errorf("get swaps by time range: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// scanSwaps reads swap rows. Numeric columns arrive as text and are
// parsed into decimals without a float round trip.
func scanSwaps(rows pgx.Rows) ([]*domain.Swap, error) {
	var swaps []*domain.Swap
	for rows.Next() {
		var (
			swap                                   domain.Swap
			volume0, volume1, liquidity, sqrtPrice string
		)
		err := rows.Scan(
			&swap.PoolAddress,
			&swap.TxHash,
			&swap.LogIndex,
			&swap.BlockNumber,
			&swap.Tick,
			&volume0,
			&volume1,
			&liquidity,
			&sqrtPrice,
			&swap.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}

		if swap.VolumeToken0, err = decimal.NewFromString(volume0); err != nil {
			return nil, fmt.Errorf("parse volume_token0: %w", err)
		}
		if swap.VolumeToken1, err = decimal.NewFromString(volume1); err != nil {
			return nil, fmt.Errorf("parse volume_token1: %w", err)
		}
		if swap.Liquidity, err = decimal.NewFromString(liquidity); err != nil {
			return nil, fmt.Errorf("parse liquidity: %w", err)
		}
		if swap.SqrtPriceX96, err = decimal.NewFromString(sqrtPrice); err != nil {
			return nil, fmt.Errorf("parse sqrt_price_x96: %w", err)
		}

		swaps = append(swaps, &swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swaps: %w", err)
	}
	return swaps, nil
}
