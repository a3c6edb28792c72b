// -----------------------------------------------------------------------
// NewsWatch - polls a news feed and alerts on relevant crypto headlines
// -----------------------------------------------------------------------

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/app"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/services/display"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles   configPaths // Multiple -config flags supported
	runOnce       = flag.Bool("once", false, "Run a single check and exit")
	historyLimit  = flag.Int("history", 0, "Print the N most recent archived alerts and exit")
	interval      = flag.Int("interval", 0, "Seconds between checks (overrides config)")
	minImportance = flag.String("min-importance", "", "Minimum importance to display (overrides config)")
	envFile       = flag.String("env", ".env", "Environment file to load before reading config")
	showVersion   = flag.Bool("version", false, "Print version information")
	showVersionV  = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			common.WriteCrashFile(common.LogsDir, r, string(debug.Stack()))
			os.Exit(2)
		}
	}()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("NewsWatch version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load .env (so NEWS_API_KEY can live outside the config files)
	// 2. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 3. Apply CLI overrides (highest priority)
	// 4. Validate
	// 5. Initialize logger
	// 6. Print banner
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", *envFile, err)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		for _, candidate := range common.DefaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				configFiles = append(configFiles, candidate)
				break
			}
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *interval, *minImportance)

	if err := config.Validate(); err != nil {
		if errors.Is(err, common.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "ERROR: News API key is not set.")
			fmt.Fprintln(os.Stderr, "Set NEWS_API_KEY in the environment or .env file, or feed.api_key in newswatch.toml.")
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}

	logger = common.SetupLogger(config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("query", config.Feed.Query).
		Str("schedule", config.Monitor.CronSchedule()).
		Str("seen_file", config.Storage.SeenFile).
		Bool("archive", config.Storage.Badger.Enabled).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration (sanitized)")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *historyLimit > 0:
		os.Exit(printHistory(application, *historyLimit))
	case *runOnce:
		os.Exit(checkOnce(application))
	default:
		os.Exit(run(application))
	}
}

// run starts the scheduler and blocks until SIGINT/SIGTERM
func run(application *app.App) int {
	common.PrintBanner(os.Stdout, config, application.PolicyService.MinDisplay(), logger)

	if err := application.Start(); err != nil {
		logger.Error().Err(err).Msg("Failed to start")
		application.Close()
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Interrupt signal received")
	fmt.Println("\nStopping NewsWatch...")

	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("Shutdown completed with errors")
		return 1
	}

	logger.Info().Msg("NewsWatch stopped")
	fmt.Println("NewsWatch stopped.")
	return 0
}

func checkOnce(application *app.App) int {
	summary, err := application.RunOnce()
	closeErr := application.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", closeErr)
		return 1
	}

	fmt.Printf("Checked %d articles: %d new, %d displayed.\n", summary.Fetched, summary.New, summary.Displayed)
	return 0
}

func printHistory(application *app.App, limit int) int {
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := application.History(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("No archived alerts.")
		return 0
	}

	console := application.Display
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		fmt.Printf("Displayed %s\n", record.DisplayedAt.Format(display.DateLayout))
		console.Show(&record.Article, &record.Analysis)
	}
	return 0
}
