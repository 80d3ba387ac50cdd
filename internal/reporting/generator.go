package reporting

import (
	"time"

	"uniswap-v3-backtester/internal/backtest"
	"uniswap-v3-backtester/internal/domain"
)

// Generator produces reports from backtest output.
type Generator struct {
	pool *domain.Pool
	now  func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator for a pool.
func NewGenerator(pool *domain.Pool) *Generator {
	return &Generator{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report from a finished run.
func (g *Generator) Generate(output *backtest.Output) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		PoolAddress: g.pool.Address,
		Token0:      g.pool.Token0,
		Token1:      g.pool.Token1,
	}

	report.DataSummary = g.generateDataSummary(output)

	for i, result := range output.Results {
		report.Positions = append(report.Positions, positionRow(i, result))
	}

	return report
}

func (g *Generator) generateDataSummary(output *backtest.Output) DataSummary {
	summary := DataSummary{PositionCount: len(output.Results)}

	for _, result := range output.Results {
		if len(result.SwapTicks) > summary.TotalSwaps {
			summary.TotalSwaps = len(result.SwapTicks)
		}
		for _, point := range result.SwapTicks {
			if summary.DateRangeStart.IsZero() || point.Timestamp.Before(summary.DateRangeStart) {
				summary.DateRangeStart = point.Timestamp
			}
			if point.Timestamp.After(summary.DateRangeEnd) {
				summary.DateRangeEnd = point.Timestamp
			}
		}
	}

	return summary
}

func positionRow(index int, result *backtest.Result) PositionRow {
	row := PositionRow{
		Index:            index,
		InitialTickLower: result.InitialTickLower,
		InitialTickUpper: result.InitialTickUpper,
		TotalFeesToken0:  result.TotalFees.Token0.String(),
		TotalFeesToken1:  result.TotalFees.Token1.String(),
		RebalanceCount:   len(result.RebalanceEvents),
		CompoundCount:    len(result.CompoundEvents),
		CompoundedToken0: result.TotalCompounded.Token0.String(),
		CompoundedToken1: result.TotalCompounded.Token1.String(),
	}

	if n := len(result.ILSeries); n > 0 {
		row.FinalIL = result.ILSeries[n-1].Value.StringFixed(6)
	}
	if n := len(result.APRSeries); n > 0 {
		row.FinalAPR = result.APRSeries[n-1].Value.StringFixed(6)
	}

	if len(result.ActivitySeries) > 0 {
		active := 0
		for _, point := range result.ActivitySeries {
			if point.Active {
				active++
			}
		}
		row.ActiveShare = float64(active) / float64(len(result.ActivitySeries))
	}

	return row
}
