// Package memory provides in-memory swap storage, used by tests and the
// CLI's --use-memory mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/storage"
)

// SwapStore is an in-memory implementation of storage.SwapStore.
type SwapStore struct {
	mu   sync.RWMutex
	data map[string]*swapRecord
	seq  int64
}

// swapRecord preserves insertion order so that equal-timestamp swaps
// come back in the order they were stored.
type swapRecord struct {
	swap *domain.Swap
	seq  int64
}

// NewSwapStore creates a new in-memory swap store.
func NewSwapStore() *SwapStore {
	return &SwapStore{data: make(map[string]*swapRecord)}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

// swapKey generates a unique key for a swap.
func swapKey(poolAddress, txHash string, logIndex int) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(poolAddress), txHash, logIndex)
}

// Insert adds a new swap. Returns ErrDuplicateKey if exists.
func (s *SwapStore) Insert(_ context.Context, swap *domain.Swap) error {
	if swap == nil || swap.PoolAddress == "" {
		return storage.ErrInvalidInput
	}

	key := swapKey(swap.PoolAddress, swap.TxHash, swap.LogIndex)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.seq++
	cp := *swap
	s.data[key] = &swapRecord{swap: &cp, seq: s.seq}
	return nil
}

// InsertBulk adds multiple swaps atomically. Fails entire batch on any
// duplicate.
func (s *SwapStore) InsertBulk(_ context.Context, swaps []*domain.Swap) error {
	if len(swaps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(swaps))
	for _, swap := range swaps {
		if swap == nil || swap.PoolAddress == "" {
			return storage.ErrInvalidInput
		}
		key := swapKey(swap.PoolAddress, swap.TxHash, swap.LogIndex)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, swap := range swaps {
		key := swapKey(swap.PoolAddress, swap.TxHash, swap.LogIndex)
		s.seq++
		cp := *swap
		s.data[key] = &swapRecord{swap: &cp, seq: s.seq}
	}

	return nil
}

// GetByPool retrieves all swaps for a pool, ordered by timestamp ASC.
func (s *SwapStore) GetByPool(_ context.Context, poolAddress string) ([]*domain.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := strings.ToLower(poolAddress)
	var records []*swapRecord
	for _, rec := range s.data {
		if strings.ToLower(rec.swap.PoolAddress) == pool {
			records = append(records, rec)
		}
	}

	return sortedSwaps(records), nil
}

// GetByTimeRange retrieves swaps for a pool within [start, end]
// (inclusive), ordered by timestamp ASC.
func (s *SwapStore) GetByTimeRange(_ context.Context, poolAddress string, start, end time.Time) ([]*domain.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := strings.ToLower(poolAddress)
	var records []*swapRecord
	for _, rec := range s.data {
		if strings.ToLower(rec.swap.PoolAddress) != pool {
			continue
		}
		ts := rec.swap.Timestamp
		if ts.Before(start) || ts.After(end) {
			continue
		}
		records = append(records, rec)
	}

	return sortedSwaps(records), nil
}

// sortedSwaps orders records by timestamp, then insertion order, and
// returns copies of the stored swaps.
func sortedSwaps(records []*swapRecord) []*domain.Swap {
	sort.Slice(records, func(i, j int) bool {
		ti, tj := records[i].swap.Timestamp, records[j].swap.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return records[i].seq < records[j].seq
	})

	swaps := make([]*domain.Swap, len(records))
	for i, rec := range records {
		cp := *rec.swap
		swaps[i] = &cp
	}
	return swaps
}
