package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/storage"
)

// SwapStore implements storage.SwapStore using ClickHouse. MergeTree
// does not enforce uniqueness at insert time, so duplicates are detected
// with explicit existence checks before a batch is sent.
type SwapStore struct {
	conn *Conn
}

// NewSwapStore creates a new SwapStore.
func NewSwapStore(conn *Conn) *SwapStore {
	return &SwapStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

const selectSwapsQuery = `
	SELECT pool_address, tx_hash, log_index, block_number, tick,
	       volume_token0, volume_token1, liquidity, sqrt_price_x96, block_date
	FROM uniswap_v3_swaps
`

// Insert adds a single swap. Returns ErrDuplicateKey if
// (pool_address, tx_hash, log_index) exists.
func (s *SwapStore) Insert(ctx context.Context, swap *domain.Swap) error {
	return s.InsertBulk(ctx, []*domain.Swap{swap})
}

// InsertBulk adds multiple swaps. Fails entire batch on any duplicate.
func (s *SwapStore) InsertBulk(ctx context.Context, swaps []*domain.Swap) error {
	if len(swaps) == 0 {
		return nil
	}

	// Intra-batch duplicates
	type key struct {
		pool     string
		txHash   string
		logIndex int
	}
	seen := make(map[key]struct{}, len(swaps))
	for _, swap := range swaps {
		if swap == nil || swap.PoolAddress == "" {
			return storage.ErrInvalidInput
		}
		k := key{strings.ToLower(swap.PoolAddress), swap.TxHash, swap.LogIndex}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Duplicates against existing rows
	for _, swap := range swaps {
		exists, err := s.exists(ctx, swap)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO uniswap_v3_swaps (
			pool_address, tx_hash, log_index, block_number, tick,
			volume_token0, volume_token1, liquidity, sqrt_price_x96, block_date
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, swap := range swaps {
		err = batch.Append(
			strings.ToLower(swap.PoolAddress),
			swap.TxHash,
			uint32(swap.LogIndex),
			uint64(swap.BlockNumber),
			int32(swap.Tick),
			swap.VolumeToken0,
			swap.VolumeToken1,
			swap.Liquidity,
			swap.SqrtPriceX96,
			swap.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPool retrieves all swaps for a pool, ordered by block timestamp
// ASC.
func (s *SwapStore) GetByPool(ctx context.Context, poolAddress string) ([]*domain.Swap, error) {
	query := selectSwapsQuery + `
	WHERE pool_address = ?
	ORDER BY block_date ASC, block_number ASC, log_index ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(poolAddress))
	if err != nil {
		return nil, fmt.Errorf("query by pool: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// GetByTimeRange retrieves swaps for a pool within [start, end]
// (inclusive), ordered by block timestamp ASC.
func (s *SwapStore) GetByTimeRange(ctx context.Context, poolAddress string, start, end time.Time) ([]*domain.Swap, error) {
	query := selectSwapsQuery + `
	WHERE pool_address = ? AND block_date >= ? AND block_date <= ?
	ORDER BY block_date ASC, block_number ASC, log_index ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(poolAddress), start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// exists checks if a swap with the given key exists.
func (s *SwapStore) exists(ctx context.Context, swap *domain.Swap) (bool, error) {
	query := `
		SELECT count(*) FROM uniswap_v3_swaps
		WHERE pool_address = ? AND tx_hash = ? AND log_index = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query,
		strings.ToLower(swap.PoolAddress), swap.TxHash, uint32(swap.LogIndex),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSwaps reads swap rows. The Decimal columns scan directly into
// decimals.
func scanSwaps(rows driver.Rows) ([]*domain.Swap, error) {
	var swaps []*domain.Swap
	for rows.Next() {
		var (
			swap        domain.Swap
			logIndex    uint32
			blockNumber uint64
			tick        int32
			volume0     decimal.Decimal
			volume1     decimal.Decimal
			liquidity   decimal.Decimal
			sqrtPrice   decimal.Decimal
		)
		err := rows.Scan(
			&swap.PoolAddress,
			&swap.TxHash,
			&logIndex,
			&blockNumber,
			&tick,
			&volume0,
			&volume1,
			&liquidity,
			&sqrtPrice,
			&swap.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}

		swap.LogIndex = int(logIndex)
		swap.BlockNumber = int64(blockNumber)
		swap.Tick = int(tick)
		swap.VolumeToken0 = volume0
		swap.VolumeToken1 = volume1
		swap.Liquidity = liquidity
		swap.SqrtPriceX96 = sqrtPrice

		swaps = append(swaps, &swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swaps: %w", err)
	}
	return swaps, nil
}
