package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// PlaceholderAPIKey is the value shipped in sample configuration files
const PlaceholderAPIKey = "YOUR_NEWS_API_KEY_HERE"

// ErrMissingAPIKey is returned by Validate when no usable NewsAPI key is configured
var ErrMissingAPIKey = errors.New("news API key (NEWS_API_KEY) is not set")

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Feed        FeedConfig    `toml:"feed"`
	Monitor     MonitorConfig `toml:"monitor"`
	Display     DisplayConfig `toml:"display"`
	Sound       SoundConfig   `toml:"sound"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Lexicon     LexiconConfig `toml:"lexicon"`
}

// FeedConfig contains NewsAPI settings
type FeedConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Query     string `toml:"query" validate:"required"`
	Language  string `toml:"language" validate:"omitempty,len=2"`
	SortBy    string `toml:"sort_by" validate:"oneof=publishedAt relevancy popularity"`
	PageSize  int    `toml:"page_size" validate:"min=1"` // Clamped to 100 by the client
	Timeout   string `toml:"timeout"`                    // HTTP timeout, e.g. "15s"
	RateLimit int    `toml:"rate_limit" validate:"min=1"` // Requests per second
}

// MonitorConfig controls the polling loop
type MonitorConfig struct {
	IntervalSeconds int    `toml:"interval_seconds" validate:"min=1"`
	Schedule        string `toml:"schedule"`      // Optional cron expression, overrides interval_seconds
	CycleTimeout    string `toml:"cycle_timeout"` // Upper bound for one fetch, e.g. "30s"
}

// DisplayConfig controls which articles are shown and how
type DisplayConfig struct {
	MinImportance        string `toml:"min_importance"`         // Lowest tier shown (default: "Medium")
	NeutralMinImportance string `toml:"neutral_min_importance"` // Lowest tier shown for Neutral sentiment (default: "High")
	Color                bool   `toml:"color"`
	Width                int    `toml:"width" validate:"min=20"` // Separator width
}

// SoundConfig controls audible alerts
type SoundConfig struct {
	Enabled bool   `toml:"enabled"`
	File    string `toml:"file"`
	Player  string `toml:"player"` // Optional player command, auto-detected when empty
	Bell    bool   `toml:"bell"`   // Fall back to the terminal bell when no player is available
}

type StorageConfig struct {
	SeenFile string       `toml:"seen_file" validate:"required"`
	Badger   BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration for the alert archive
type BadgerConfig struct {
	Enabled        bool   `toml:"enabled"`
	Path           string `toml:"path" validate:"required_if=Enabled true"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`                         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	File       string   `toml:"file"`        // Log file name under the logs directory
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// LexiconConfig overrides or extends the built-in keyword lexicon
type LexiconConfig struct {
	Keywords        map[string]int    `toml:"keywords"`         // Merged over the defaults
	Assets          map[string]string `toml:"assets"`           // Symbol -> alias, merged over the defaults
	Tiers           []TierConfig      `toml:"tiers"`            // Replaces the default tiers when non-empty
	ReplaceKeywords bool              `toml:"replace_keywords"` // Use only the configured keywords
	ReplaceAssets   bool              `toml:"replace_assets"`   // Use only the configured assets
}

// TierConfig is one importance tier
type TierConfig struct {
	Name string `toml:"name"`
	Min  int    `toml:"min"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Feed: FeedConfig{
			APIKey:    "",
			BaseURL:   "https://newsapi.org/v2",
			Query:     DefaultNewsQuery,
			Language:  "en",
			SortBy:    "publishedAt",
			PageSize:  10,
			Timeout:   "15s",
			RateLimit: 1,
		},
		Monitor: MonitorConfig{
			IntervalSeconds: 60,
			CycleTimeout:    "30s",
		},
		Display: DisplayConfig{
			MinImportance:        "Medium",
			NeutralMinImportance: "High",
			Color:                true,
			Width:                80,
		},
		Sound: SoundConfig{
			Enabled: true,
			File:    "notification.wav",
			Bell:    false,
		},
		Storage: StorageConfig{
			SeenFile: "seen_news.json",
			Badger: BadgerConfig{
				Enabled:        true,
				Path:           "./data/alerts",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"file"},
			File:       "newswatch.log",
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: defaults -> file1 -> file2 -> ... -> env
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NEWSWATCH_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Feed configuration. NEWS_API_KEY is the conventional name, NEWSWATCH_FEED_API_KEY wins when both are set.
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		config.Feed.APIKey = key
	}
	if key := os.Getenv("NEWSWATCH_FEED_API_KEY"); key != "" {
		config.Feed.APIKey = key
	}
	if baseURL := os.Getenv("NEWSWATCH_FEED_BASE_URL"); baseURL != "" {
		config.Feed.BaseURL = baseURL
	}
	if query := os.Getenv("NEWSWATCH_FEED_QUERY"); query != "" {
		config.Feed.Query = query
	}
	if language := os.Getenv("NEWSWATCH_FEED_LANGUAGE"); language != "" {
		config.Feed.Language = language
	}
	if pageSize := os.Getenv("NEWSWATCH_FEED_PAGE_SIZE"); pageSize != "" {
		if ps, err := strconv.Atoi(pageSize); err == nil {
			config.Feed.PageSize = ps
		}
	}

	// Monitor configuration
	if interval := os.Getenv("NEWSWATCH_MONITOR_INTERVAL"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			config.Monitor.IntervalSeconds = i
		}
	}
	if schedule := os.Getenv("NEWSWATCH_MONITOR_SCHEDULE"); schedule != "" {
		config.Monitor.Schedule = schedule
	}

	// Display configuration
	if minImportance := os.Getenv("NEWSWATCH_DISPLAY_MIN_IMPORTANCE"); minImportance != "" {
		config.Display.MinImportance = minImportance
	}
	if colorEnabled := os.Getenv("NEWSWATCH_DISPLAY_COLOR"); colorEnabled != "" {
		if c, err := strconv.ParseBool(colorEnabled); err == nil {
			config.Display.Color = c
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		config.Display.Color = false
	}

	// Sound configuration
	if enabled := os.Getenv("NEWSWATCH_SOUND_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Sound.Enabled = e
		}
	}
	if file := os.Getenv("NEWSWATCH_SOUND_FILE"); file != "" {
		config.Sound.File = file
	}

	// Storage configuration
	if seenFile := os.Getenv("NEWSWATCH_SEEN_FILE"); seenFile != "" {
		config.Storage.SeenFile = seenFile
	}
	if badgerPath := os.Getenv("NEWSWATCH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("NEWSWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("NEWSWATCH_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
// Flags have highest priority: CLI flags > env vars > config file > defaults
func ApplyFlagOverrides(config *Config, intervalSeconds int, minImportance string) {
	if intervalSeconds > 0 {
		config.Monitor.IntervalSeconds = intervalSeconds
		config.Monitor.Schedule = ""
	}
	if minImportance != "" {
		config.Display.MinImportance = minImportance
	}
}

// Validate checks the configuration. Errors returned here are fatal at startup.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.Feed.APIKey)
	if key == "" || key == PlaceholderAPIKey {
		return ErrMissingAPIKey
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.Feed.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid feed timeout %q: %w", c.Feed.Timeout, err)
	}
	if _, err := c.Monitor.CycleTimeoutDuration(); err != nil {
		return fmt.Errorf("invalid cycle timeout %q: %w", c.Monitor.CycleTimeout, err)
	}
	if err := ValidateSchedule(c.Monitor.CronSchedule()); err != nil {
		return err
	}

	for i, tier := range c.Lexicon.Tiers {
		if strings.TrimSpace(tier.Name) == "" {
			return fmt.Errorf("lexicon tier %d has no name", i)
		}
		if tier.Min < 0 {
			return fmt.Errorf("lexicon tier %q has a negative minimum", tier.Name)
		}
	}

	return nil
}

// TimeoutDuration parses the feed HTTP timeout
func (f FeedConfig) TimeoutDuration() (time.Duration, error) {
	return parseDurationOr(f.Timeout, 15*time.Second)
}

// CycleTimeoutDuration parses the upper bound for one fetch
func (m MonitorConfig) CycleTimeoutDuration() (time.Duration, error) {
	return parseDurationOr(m.CycleTimeout, 30*time.Second)
}

// CronSchedule returns the cron expression driving the monitor.
// An explicit schedule wins, otherwise "@every <interval>s".
func (m MonitorConfig) CronSchedule() string {
	if s := strings.TrimSpace(m.Schedule); s != "" {
		return s
	}
	interval := m.IntervalSeconds
	if interval <= 0 {
		interval = 60
	}
	return fmt.Sprintf("@every %ds", interval)
}

// ValidateSchedule validates a cron expression or descriptor such as "@every 60s"
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
