package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"uniswap-v3-backtester/internal/backtest"
	"uniswap-v3-backtester/internal/compound"
	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/ingest"
	"uniswap-v3-backtester/internal/rebalance"
	"uniswap-v3-backtester/internal/reporting"
	"uniswap-v3-backtester/internal/storage"
	chstore "uniswap-v3-backtester/internal/storage/clickhouse"
	"uniswap-v3-backtester/internal/storage/memory"
	pgstore "uniswap-v3-backtester/internal/storage/postgres"
	"uniswap-v3-backtester/internal/tracker"
	"uniswap-v3-backtester/internal/uniswap"
)

func main() {
	// Pool and position
	poolAddress := flag.String("pool", "", "Pool address (required)")
	token0 := flag.String("token0", "token0", "Token0 symbol")
	token1 := flag.String("token1", "token1", "Token1 symbol")
	feeRate := flag.String("fee-rate", "0.003", "Pool fee rate as a decimal fraction")
	token0Decimals := flag.Int("decimals0", 18, "Token0 decimals")
	token1Decimals := flag.Int("decimals1", 18, "Token1 decimals")
	tickLower := flag.Int("tick-lower", 0, "Initial lower tick bound (required)")
	tickUpper := flag.Int("tick-upper", 0, "Initial upper tick bound (required)")
	amount0 := flag.String("amount0", "", "Token0 amount to deposit (required)")

	// Time range
	fromTime := flag.String("from-time", "", "Start time (RFC3339, required)")
	toTime := flag.String("to-time", "", "End time (RFC3339, required)")

	// Trackers
	trackIL := flag.Bool("track-il", true, "Track impermanent loss")
	trackAPR := flag.Bool("track-apr", true, "Track daily returns")

	// Rebalance strategy
	strategyName := flag.String("strategy", "none", "Rebalance strategy: none, time, out-of-range, out-of-range-duration")
	rebalanceInterval := flag.Duration("rebalance-interval", 24*time.Hour, "Interval for the time strategy")
	outOfRangeFor := flag.Duration("out-of-range-for", time.Hour, "Duration for the out-of-range-duration strategy")
	bias := flag.Float64("bias", backtest.DefaultBias, "Range split on rebalance, 0..1 below the current tick")

	// Compounding
	compoundEvery := flag.Duration("compound-every", 0, "Compound accumulated fees at this interval (0 disables)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	swapsCSV := flag.String("swaps-csv", "", "Load swaps from a CSV file instead of a database")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	outDir := flag.String("out-dir", "", "Directory for per-series CSV files (optional)")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *poolAddress == "" {
		logger.Fatal("--pool is required")
	}
	if *amount0 == "" {
		logger.Fatal("--amount0 is required")
	}
	if *tickLower >= *tickUpper {
		logger.Fatal("--tick-lower must be below --tick-upper")
	}

	start, err := time.Parse(time.RFC3339, *fromTime)
	if err != nil {
		logger.WithError(err).Fatal("invalid --from-time")
	}
	end, err := time.Parse(time.RFC3339, *toTime)
	if err != nil {
		logger.WithError(err).Fatal("invalid --to-time")
	}

	depositAmount0, err := decimal.NewFromString(*amount0)
	if err != nil {
		logger.WithError(err).Fatal("invalid --amount0")
	}
	poolFeeRate, err := decimal.NewFromString(*feeRate)
	if err != nil {
		logger.WithError(err).Fatal("invalid --fee-rate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig).Info("shutting down")
		cancel()
	}()

	store, cleanup, err := openSwapStore(ctx, logger, *postgresDSN, *clickhouseDSN, *swapsCSV)
	if err != nil {
		logger.WithError(err).Fatal("open swap store")
	}
	defer cleanup()

	swaps, err := store.GetByTimeRange(ctx, *poolAddress, start, end)
	if err != nil {
		logger.WithError(err).Fatal("load swaps")
	}
	if len(swaps) == 0 {
		logger.Fatal("no swaps in the requested range")
	}
	logger.WithFields(logrus.Fields{
		"pool":  *poolAddress,
		"swaps": len(swaps),
		"from":  start.Format(time.RFC3339),
		"to":    end.Format(time.RFC3339),
	}).Info("loaded swap archive")

	pool := &domain.Pool{
		Address: *poolAddress,
		Token0:  *token0,
		Token1:  *token1,
		FeeRate: poolFeeRate,
	}

	// The position enters at the first observed tick with the token0
	// side fixed.
	entryTick := swaps[0].Tick
	liquidity, amount1 := uniswap.Token1ForFixedToken0(depositAmount0, *tickLower, *tickUpper, entryTick)

	position := &domain.Position{
		TickLower: *tickLower,
		TickUpper: *tickUpper,
		Amount0:   depositAmount0,
		Amount1:   amount1,
		Liquidity: liquidity,
		Pool:      pool,
	}

	sc := backtest.NewSimulationContext(position, start, domain.SwapSeries{Swaps: swaps})
	sc.Bias = *bias

	if *trackIL {
		ilTracker, err := tracker.NewILTracker(entryTick, depositAmount0, amount1, *tickLower, *tickUpper)
		if err != nil {
			logger.WithError(err).Fatal("create IL tracker")
		}
		sc.IL = ilTracker
	}
	if *trackAPR {
		sc.APR = tracker.NewAPRTracker(depositAmount0, amount1, *token0Decimals, *token1Decimals)
	}

	sc.Rebalancer, err = buildStrategy(*strategyName, *rebalanceInterval, *outOfRangeFor)
	if err != nil {
		logger.WithError(err).Fatal("create rebalance strategy")
	}

	if *compoundEvery > 0 {
		sc.Compounder, err = compound.NewCompounder(*compoundEvery, nil, compound.ModeAND)
		if err != nil {
			logger.WithError(err).Fatal("create compounder")
		}
	}

	runner := backtest.NewRunner([]*backtest.SimulationContext{sc})
	output, err := runner.Run()
	if err != nil {
		logger.WithError(err).Fatal("backtest failed")
	}

	report := reporting.NewGenerator(pool).Generate(output)

	if *outDir != "" {
		if err := writeSeriesFiles(*outDir, report, output); err != nil {
			logger.WithError(err).Fatal("write output files")
		}
		logger.WithField("dir", *outDir).Info("wrote series files")
	}

	if *outputJSON {
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.WithError(err).Fatal("encode report")
		}
		fmt.Println(string(encoded))
		return
	}
	fmt.Print(reporting.RenderMarkdown(report))
}

// openSwapStore picks the storage backend from flags. CSV input loads
// into the in-memory store.
func openSwapStore(ctx context.Context, logger *logrus.Logger, postgresDSN, clickhouseDSN, swapsCSV string) (storage.SwapStore, func(), error) {
	switch {
	case swapsCSV != "":
		file, err := os.Open(swapsCSV)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv: %w", err)
		}
		defer file.Close()

		store := memory.NewSwapStore()
		count, err := ingest.LoadSwapsCSV(ctx, store, file)
		if err != nil {
			return nil, nil, fmt.Errorf("load csv: %w", err)
		}
		logger.WithField("swaps", count).Info("loaded swaps from csv")
		return store, func() {}, nil

	case postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return pgstore.NewSwapStore(pool), pool.Close, nil

	case clickhouseDSN != "":
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return chstore.NewSwapStore(conn), func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("one of --swaps-csv, --postgres-dsn or --clickhouse-dsn is required")
	}
}

// buildStrategy creates the rebalance strategy named by the flag, or
// nil for "none".
func buildStrategy(name string, interval, outOfRangeFor time.Duration) (rebalance.Strategy, error) {
	switch name {
	case "none":
		return nil, nil
	case "time":
		return rebalance.NewTimeTriggered(interval)
	case "out-of-range":
		return rebalance.NewOutOfRange(), nil
	case "out-of-range-duration":
		return rebalance.NewOutOfRangeDuration(outOfRangeFor)
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// writeSeriesFiles writes the markdown summary, the position summary
// CSV and the per-series CSVs into dir.
func writeSeriesFiles(dir string, report *reporting.Report, output *backtest.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"report.md":     reporting.RenderMarkdown(report),
		"positions.csv": reporting.RenderPositionsCSV(report.Positions),
	}
	for i, result := range output.Results {
		for name, content := range reporting.SeriesFiles(i, result) {
			files[name] = content
		}
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
