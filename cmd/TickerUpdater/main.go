package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sebuszqo/TickerUpdater/internal/config"
	database "github.com/sebuszqo/TickerUpdater/internal/db"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/export"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/marketdata"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/ticker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	outDir   string
	schedule string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "TickerUpdater",
	Short: "Fetch US stock tickers and save them as ranked and per-industry CSV files",
	Long: `TickerUpdater downloads the NASDAQ stock screener table (NYSE, NASDAQ and AMEX
listings), keeps US companies only, and writes:

  tickers/all.csv, tickers/top_50.csv, tickers/top_100.csv, tickers/top_200.csv
  by_industry/<industry>.csv

sorted by market capitalization. Set DB_CONNECTION_STRING to also upsert the
snapshot into Postgres, and --schedule to keep running on a cron schedule.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("out") {
			cfg.OutputDir = outDir
		}
		if cmd.Flags().Changed("schedule") {
			cfg.UpdateSchedule = schedule
		}

		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if !cfg.EnvFileLoaded {
			logger.Debug("no .env file, continuing with system environment variables")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runUpdate,
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output root for tickers/ and by_industry/ (or set OUTPUT_DIR)")
	rootCmd.Flags().StringVar(&schedule, "schedule", "", "Cron spec, e.g. \"@every 24h\" (or set UPDATE_SCHEDULE)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	return zapConfig.Build()
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo ticker.Repository
	if cfg.DBConnString != "" {
		dbService, err := database.NewDBService(cfg.DBConnString, logger)
		if err != nil {
			return fmt.Errorf("could not initialize database: %w", err)
		}
		defer dbService.Close()
		repo = ticker.NewTickerRepository(dbService.DB)
	}

	client := marketdata.NewNasdaqClient(cfg.ScreenerURL, logger)
	tickerService := ticker.NewTickerService(client, logger)
	writer := export.NewWriter(cfg.OutputDir, logger)
	updater := ticker.NewUpdater(tickerService, writer, repo, logger)

	logger.Info("US stock ticker update", zap.String("output_dir", cfg.OutputDir))

	if cfg.UpdateSchedule == "" {
		return updater.Run(ctx)
	}
	return runScheduled(ctx, updater)
}

func runScheduled(ctx context.Context, updater *ticker.Updater) error {
	needsUpdate, err := updater.NeedsUpdate(ctx, cfg.SnapshotMaxAge)
	if err != nil {
		return fmt.Errorf("checking if update is needed: %w", err)
	}
	if needsUpdate {
		logger.Info("snapshot is outdated or missing, running initial update")
		if err := updater.Run(ctx); err != nil {
			logger.Error("initial update failed", zap.Error(err))
		}
	} else {
		logger.Info("snapshot is fresh, skipping initial update")
	}

	c, err := StartScheduler(ctx, updater, cfg.UpdateSchedule)
	if err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func StartScheduler(ctx context.Context, updater *ticker.Updater, spec string) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)), cron.WithLogger(cronLogger))
	_, err := c.AddFunc(spec, func() {
		if err := updater.Run(ctx); err != nil {
			logger.Error("scheduled update failed", zap.Error(err))
		} else {
			logger.Info("scheduled update completed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("update failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
