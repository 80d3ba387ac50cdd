package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"uniswap-v3-backtester/internal/ingest"
	"uniswap-v3-backtester/internal/storage"
	chstore "uniswap-v3-backtester/internal/storage/clickhouse"
	"uniswap-v3-backtester/internal/storage/migrations"
	pgstore "uniswap-v3-backtester/internal/storage/postgres"
)

func main() {
	csvPath := flag.String("csv", "", "Swap CSV file to ingest (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	migrate := flag.Bool("migrate", true, "Apply schema migrations before ingesting")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *csvPath == "" {
		logger.Fatal("--csv is required")
	}
	if (*postgresDSN == "") == (*clickhouseDSN == "") {
		logger.Fatal("exactly one of --postgres-dsn or --clickhouse-dsn is required")
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

	var store storage.SwapStore
	switch {
	case *postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.WithError(err).Fatal("connect to postgres")
		}
		defer pool.Close()

		if *migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.WithError(err).Fatal("apply postgres migrations")
			}
		}
		store = pgstore.NewSwapStore(pool)

	case *clickhouseDSN != "":
		var (
			conn *chstore.Conn
			err  error
		)
		if *migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		}
		if err != nil {
			logger.WithError(err).Fatal("connect to clickhouse")
		}
		defer conn.Close()

		store = chstore.NewSwapStore(conn)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		logger.WithError(err).Fatal("open csv")
	}
	defer file.Close()

	count, err := ingest.LoadSwapsCSV(ctx, store, file)
	if err != nil {
		logger.WithError(err).Fatal("ingest swaps")
	}

	logger.WithFields(logrus.Fields{
		"csv":   *csvPath,
		"swaps": count,
	}).Info("ingest complete")
}
