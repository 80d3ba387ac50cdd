package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Pool: %s (%s/%s)\n\n", r.PoolAddress, r.Token0, r.Token1))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Positions | %d |\n", r.DataSummary.PositionCount))
	sb.WriteString(fmt.Sprintf("| Swaps | %d |\n", r.DataSummary.TotalSwaps))
	if !r.DataSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", r.DataSummary.DateRangeStart.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", r.DataSummary.DateRangeEnd.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Positions
	sb.WriteString("## Positions\n\n")
	if len(r.Positions) > 0 {
		sb.WriteString("| # | Lower | Upper | Fees0 | Fees1 | IL% | Return% | Active | Rebalances | Compounds |\n")
		sb.WriteString("|---|-------|-------|-------|-------|-----|---------|--------|------------|-----------|\n")
		for _, p := range r.Positions {
			il := p.FinalIL
			if il == "" {
				il = "-"
			}
			apr := p.FinalAPR
			if apr == "" {
				apr = "-"
			}
			sb.WriteString(fmt.Sprintf("| %d | %d | %d | %s | %s | %s | %s | %.2f%% | %d | %d |\n",
				p.Index, p.InitialTickLower, p.InitialTickUpper,
				p.TotalFeesToken0, p.TotalFeesToken1,
				il, apr, p.ActiveShare*100, p.RebalanceCount, p.CompoundCount))
		}
	} else {
		sb.WriteString("No positions simulated.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
