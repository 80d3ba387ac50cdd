package reporting

import (
	"fmt"
	"strings"
	"time"

	"uniswap-v3-backtester/internal/backtest"
	"uniswap-v3-backtester/internal/domain"
)

// RenderSeriesCSV renders a decimal time series as CSV string.
func RenderSeriesCSV(name string, points []domain.SeriesPoint) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("timestamp,%s\n", name))
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s\n", p.Timestamp.UTC().Format(time.RFC3339), p.Value.String()))
	}

	return sb.String()
}

// RenderFeesCSV renders the per-swap fee series as CSV string.
func RenderFeesCSV(points []domain.FeePoint) string {
	var sb strings.Builder

	sb.WriteString("timestamp,fee_token0,fee_token1\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s,%s\n",
			p.Timestamp.UTC().Format(time.RFC3339), p.Fee.Token0.String(), p.Fee.Token1.String()))
	}

	return sb.String()
}

// RenderBalancesCSV renders a token balance or composition series as CSV
// string.
func RenderBalancesCSV(points []domain.BalancePoint) string {
	var sb strings.Builder

	sb.WriteString("timestamp,amount0,amount1\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s,%s\n",
			p.Timestamp.UTC().Format(time.RFC3339), p.Amount0.String(), p.Amount1.String()))
	}

	return sb.String()
}

// RenderActivityCSV renders the activity series as CSV string. Active
// samples render as 1, inactive as 0.
func RenderActivityCSV(points []domain.ActivityPoint) string {
	var sb strings.Builder

	sb.WriteString("timestamp,active\n")
	for _, p := range points {
		active := 0
		if p.Active {
			active = 1
		}
		sb.WriteString(fmt.Sprintf("%s,%d\n", p.Timestamp.UTC().Format(time.RFC3339), active))
	}

	return sb.String()
}

// RenderTicksCSV renders the observed tick series as CSV string.
func RenderTicksCSV(points []domain.TickPoint) string {
	var sb strings.Builder

	sb.WriteString("timestamp,tick\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%d\n", p.Timestamp.UTC().Format(time.RFC3339), p.Tick))
	}

	return sb.String()
}

// RenderPositionsCSV renders the per-position summary rows as CSV
// string.
func RenderPositionsCSV(positions []PositionRow) string {
	var sb strings.Builder

	sb.WriteString("position,tick_lower,tick_upper,fees_token0,fees_token1,")
	sb.WriteString("final_il,final_apr,active_share,rebalances,compounds\n")
	for _, p := range positions {
		sb.WriteString(fmt.Sprintf("%d,%d,%d,%s,%s,%s,%s,%.6f,%d,%d\n",
			p.Index,
			p.InitialTickLower,
			p.InitialTickUpper,
			p.TotalFeesToken0,
			p.TotalFeesToken1,
			p.FinalIL,
			p.FinalAPR,
			p.ActiveShare,
			p.RebalanceCount,
			p.CompoundCount,
		))
	}

	return sb.String()
}

// SeriesFiles maps CSV file names to rendered contents for one result.
// The index distinguishes positions when several run together.
func SeriesFiles(index int, result *backtest.Result) map[string]string {
	prefix := fmt.Sprintf("position_%d_", index)
	files := map[string]string{
		prefix + "fees.csv":         RenderFeesCSV(result.FeeSeries),
		prefix + "activity.csv":     RenderActivityCSV(result.ActivitySeries),
		prefix + "balances.csv":     RenderBalancesCSV(result.TokenBalances),
		prefix + "compositions.csv": RenderBalancesCSV(result.TokenCompositions),
		prefix + "ticks.csv":        RenderTicksCSV(result.SwapTicks),
	}
	if len(result.ILSeries) > 0 {
		files[prefix+"il.csv"] = RenderSeriesCSV("il_percent", result.ILSeries)
	}
	if len(result.RealizedILSeries) > 0 {
		files[prefix+"realized_il.csv"] = RenderSeriesCSV("realized_il_percent", result.RealizedILSeries)
	}
	if len(result.APRSeries) > 0 {
		files[prefix+"apr.csv"] = RenderSeriesCSV("return_percent", result.APRSeries)
	}
	return files
}
