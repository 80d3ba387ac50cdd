package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/backtest"
	"uniswap-v3-backtester/internal/domain"
)

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testOutput() *backtest.Output {
	return &backtest.Output{Results: []*backtest.Result{
		{
			TotalFees: domain.Fee{
				Token0: decimal.RequireFromString("0.6"),
				Token1: decimal.Zero,
			},
			ActivitySeries: []domain.ActivityPoint{
				{Timestamp: testStart, Active: true},
				{Timestamp: testStart.Add(time.Minute), Active: true},
				{Timestamp: testStart.Add(2 * time.Minute), Active: false},
				{Timestamp: testStart.Add(3 * time.Minute), Active: true},
			},
			ILSeries: []domain.SeriesPoint{
				{Timestamp: testStart, Value: decimal.Zero},
				{Timestamp: testStart.Add(time.Minute), Value: decimal.RequireFromString("-0.5")},
			},
			APRSeries: []domain.SeriesPoint{
				{Timestamp: testStart.Add(24 * time.Hour), Value: decimal.NewFromInt(2)},
			},
			SwapTicks: []domain.TickPoint{
				{Timestamp: testStart, Tick: 1500},
				{Timestamp: testStart.Add(3 * time.Minute), Tick: 1550},
			},
			InitialTickLower: 1400,
			InitialTickUpper: 1600,
			TotalCompounded:  domain.ZeroFee(),
		},
	}}
}

func testGenerator() *Generator {
	pool := &domain.Pool{
		Address: "0xpool",
		Token0:  "usdc",
		Token1:  "weth",
		FeeRate: decimal.RequireFromString("0.003"),
	}
	return NewGenerator(pool).WithClock(func() time.Time { return testStart })
}

func TestGenerator_Generate(t *testing.T) {
	report := testGenerator().Generate(testOutput())

	if !report.GeneratedAt.Equal(testStart) {
		t.Errorf("Expected injected clock time, got %v", report.GeneratedAt)
	}
	if report.PoolAddress != "0xpool" || report.Token0 != "usdc" || report.Token1 != "weth" {
		t.Errorf("Unexpected pool metadata: %+v", report)
	}

	if report.DataSummary.PositionCount != 1 || report.DataSummary.TotalSwaps != 2 {
		t.Errorf("Unexpected data summary: %+v", report.DataSummary)
	}
	if !report.DataSummary.DateRangeStart.Equal(testStart) {
		t.Errorf("Expected range start %v, got %v", testStart, report.DataSummary.DateRangeStart)
	}

	if len(report.Positions) != 1 {
		t.Fatalf("Expected 1 position row, got %d", len(report.Positions))
	}
	row := report.Positions[0]
	if row.InitialTickLower != 1400 || row.InitialTickUpper != 1600 {
		t.Errorf("Unexpected bounds: %+v", row)
	}
	if row.TotalFeesToken0 != "0.6" {
		t.Errorf("Expected fees 0.6, got %s", row.TotalFeesToken0)
	}
	if row.ActiveShare != 0.75 {
		t.Errorf("Expected active share 0.75, got %v", row.ActiveShare)
	}

	// Final series values render with fixed precision.
	if row.FinalIL != "-0.500000" {
		t.Errorf("Expected final IL -0.500000, got %s", row.FinalIL)
	}
	if row.FinalAPR != "2.000000" {
		t.Errorf("Expected final return 2.000000, got %s", row.FinalAPR)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := testGenerator().Generate(testOutput())
	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Backtest Report",
		"Pool: 0xpool (usdc/weth)",
		"| Positions | 1 |",
		"| 0 | 1400 | 1600 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderCSVs(t *testing.T) {
	result := testOutput().Results[0]

	ticks := RenderTicksCSV(result.SwapTicks)
	if !strings.HasPrefix(ticks, "timestamp,tick\n") {
		t.Errorf("Unexpected ticks header: %q", ticks)
	}
	if !strings.Contains(ticks, "2024-03-01T00:00:00Z,1500") {
		t.Errorf("Ticks CSV missing row:\n%s", ticks)
	}

	activity := RenderActivityCSV(result.ActivitySeries)
	if !strings.Contains(activity, "2024-03-01T00:02:00Z,0") {
		t.Errorf("Activity CSV missing inactive row:\n%s", activity)
	}

	il := RenderSeriesCSV("il_percent", result.ILSeries)
	if !strings.HasPrefix(il, "timestamp,il_percent\n") {
		t.Errorf("Unexpected IL header: %q", il)
	}

	files := SeriesFiles(0, result)
	for _, name := range []string{
		"position_0_fees.csv", "position_0_activity.csv", "position_0_ticks.csv",
		"position_0_il.csv", "position_0_apr.csv",
	} {
		if _, ok := files[name]; !ok {
			t.Errorf("Expected series file %s", name)
		}
	}
	// Empty series render no file.
	if _, ok := files["position_0_realized_il.csv"]; ok {
		t.Error("Expected no realized IL file for an empty series")
	}
}
