// Package ingest loads swap archives from CSV exports into a SwapStore.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/storage"
)

// ErrMissingHeader is returned when the CSV has no header row.
var ErrMissingHeader = errors.New("ingest: missing header row")

// swapColumns is the required CSV header, in order.
var swapColumns = []string{
	"pool_address", "tx_hash", "log_index", "block_number", "tick",
	"volume_token0", "volume_token1", "liquidity", "sqrt_price_x96", "timestamp",
}

// ReadSwapsCSV parses swap rows from a CSV export. Timestamps are
// RFC3339; numeric columns are decimal strings.
func ReadSwapsCSV(r io.Reader) ([]*domain.Swap, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var swaps []*domain.Swap
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		swap, err := parseSwapRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		swaps = append(swaps, swap)
	}

	return swaps, nil
}

// LoadSwapsCSV reads swaps from r and bulk-inserts them into the store.
// Returns the number of swaps inserted.
func LoadSwapsCSV(ctx context.Context, store storage.SwapStore, r io.Reader) (int, error) {
	swaps, err := ReadSwapsCSV(r)
	if err != nil {
		return 0, err
	}
	if len(swaps) == 0 {
		return 0, nil
	}
	if err := store.InsertBulk(ctx, swaps); err != nil {
		return 0, fmt.Errorf("insert swaps: %w", err)
	}
	return len(swaps), nil
}

func checkHeader(header []string) error {
	if len(header) != len(swapColumns) {
		return fmt.Errorf("ingest: expected %d columns, got %d", len(swapColumns), len(header))
	}
	for i, want := range swapColumns {
		if header[i] != want {
			return fmt.Errorf("ingest: column %d: expected %q, got %q", i, want, header[i])
		}
	}
	return nil
}

func parseSwapRow(record []string) (*domain.Swap, error) {
	if len(record) != len(swapColumns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(swapColumns), len(record))
	}

	logIndex, err := strconv.Atoi(record[2])
	if err != nil {
		return nil, fmt.Errorf("log_index: %w", err)
	}
	blockNumber, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("block_number: %w", err)
	}
	tick, err := strconv.Atoi(record[4])
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}

	volume0, err := decimal.NewFromString(record[5])
	if err != nil {
		return nil, fmt.Errorf("volume_token0: %w", err)
	}
	volume1, err := decimal.NewFromString(record[6])
	if err != nil {
		return nil, fmt.Errorf("volume_token1: %w", err)
	}
	liquidity, err := decimal.NewFromString(record[7])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	sqrtPrice, err := decimal.NewFromString(record[8])
	if err != nil {
		return nil, fmt.Errorf("sqrt_price_x96: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, record[9])
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}

	return &domain.Swap{
		PoolAddress:  record[0],
		TxHash:       record[1],
		LogIndex:     logIndex,
		BlockNumber:  blockNumber,
		Tick:         tick,
		VolumeToken0: volume0,
		VolumeToken1: volume1,
		Liquidity:    liquidity,
		SqrtPriceX96: sqrtPrice,
		Timestamp:    timestamp.UTC(),
	}, nil
}
