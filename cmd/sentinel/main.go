package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"StockSentinel/internal/analyzer"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/strategy"
	"StockSentinel/internal/watchlist"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	configPath string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "sentinel",
	Short:         "Stock screening and recommendation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("StockSentinel version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.AddCommand(analyzeCmd, runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig loads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	path := configPath
	if v := os.Getenv("CONFIG_PATH"); v != "" && !rootCmd.PersistentFlags().Changed("config") {
		path = v
	}
	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// app bundles the components shared by every subcommand.
type app struct {
	cfg      *config.Config
	fetcher  collector.Fetcher
	analyzer *analyzer.Analyzer
}

func newApp(cfg *config.Config) (*app, error) {
	fetcher, err := collector.NewFetcher(cfg.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("init data source: %w", err)
	}
	engine, err := strategy.NewEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")
	return &app{
		cfg:     cfg,
		fetcher: fetcher,
		analyzer: analyzer.New(fetcher, engine,
			analyzer.WithHistoryDays(cfg.DataSource.HistoryDays),
			analyzer.WithWorkers(cfg.Analysis.Workers),
		),
	}, nil
}

func (a *app) symbols() ([]string, error) {
	return watchlist.Load(a.cfg.Watchlist.File, a.cfg.Watchlist.Symbols)
}

func (a *app) recorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

func (a *app) Close() {
	if c, ok := a.fetcher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close data source")
		}
	}
}
