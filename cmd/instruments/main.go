package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peter-kozarec/oanda/pkg/data/duckdb"
	"github.com/peter-kozarec/oanda/pkg/dbg"
	"github.com/peter-kozarec/oanda/pkg/exchange/oanda"
	"github.com/peter-kozarec/oanda/pkg/tools/store"
)

func main() {
	envFile := flag.String("env-file", defaultEnvFile, "dotenv file with OANDA_* variables")
	duckdbPath := flag.String("duckdb", "", "duckdb database the instruments are saved to")
	production := flag.Bool("prod", false, "json logging")
	instrumentName := flag.String("instrument", "", "only log this instrument, e.g. EUR_USD")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}

	logger := dbg.MustNewLogger(*production, level)
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger, *envFile, *duckdbPath, *instrumentName); err != nil {
		var statusErr *oanda.StatusError
		if errors.As(err, &statusErr) {
			logger.Error("broker rejected the request", zap.Int("status", statusErr.Code))
		} else {
			logger.Error("unable to fetch instruments", zap.Error(err))
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger, envFile, duckdbPath, instrumentName string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := oanda.NewClient(logger, nil, cfg.accountId, cfg.authToken, cfg.baseUrl)

	instruments, err := client.Instruments(ctx)
	if err != nil {
		return err
	}

	if instrumentName != "" {
		instrument, err := store.CreateInstrumentStore(instruments...).Get(instrumentName)
		if err != nil {
			return err
		}
		logger.Info("instrument", instrument.Fields()...)
	} else {
		for _, instrument := range instruments {
			logger.Info("instrument", instrument.Fields()...)
		}
	}
	logger.Info("instruments fetched", zap.Int("count", len(instruments)), zap.String("url", cfg.baseUrl))

	if duckdbPath == "" {
		return nil
	}

	db := duckdb.NewStore(duckdbPath)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("unable to connect to %s: %w", duckdbPath, err)
	}
	defer db.Close()

	if err := db.SaveInstruments(ctx, instruments); err != nil {
		return fmt.Errorf("unable to save instruments: %w", err)
	}
	logger.Info("instruments saved", zap.String("duckdb", duckdbPath))

	return nil
}
