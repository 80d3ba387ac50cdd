package reporting

import "time"

// Report represents a rendered backtest run summary.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	PoolAddress string
	Token0      string
	Token1      string

	// Data Summary
	DataSummary DataSummary

	// Per-position summaries, in simulation order.
	Positions []PositionRow
}

// DataSummary describes the swap data the run consumed.
type DataSummary struct {
	PositionCount  int
	TotalSwaps     int
	DateRangeStart time.Time
	DateRangeEnd   time.Time
}

// PositionRow represents one simulated position in the summary table.
type PositionRow struct {
	Index            int
	InitialTickLower int
	InitialTickUpper int
	TotalFeesToken0  string
	TotalFeesToken1  string
	FinalIL          string // percent, empty if no tracker attached
	FinalAPR         string // percent, empty if no tracker attached
	ActiveShare      float64
	RebalanceCount   int
	CompoundCount    int
	CompoundedToken0 string
	CompoundedToken1 string
}
