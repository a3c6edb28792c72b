// -----------------------------------------------------------------------
// Application wiring - builds services from config and owns their lifecycle
// -----------------------------------------------------------------------

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
	"github.com/ternarybob/newswatch/internal/newsapi"
	"github.com/ternarybob/newswatch/internal/services/analyzer"
	"github.com/ternarybob/newswatch/internal/services/dedup"
	"github.com/ternarybob/newswatch/internal/services/display"
	"github.com/ternarybob/newswatch/internal/services/feed"
	"github.com/ternarybob/newswatch/internal/services/monitor"
	"github.com/ternarybob/newswatch/internal/services/notifier"
	"github.com/ternarybob/newswatch/internal/services/policy"
	"github.com/ternarybob/newswatch/internal/services/scheduler"
	"github.com/ternarybob/newswatch/internal/storage"
)

// ErrArchiveDisabled is returned by History when the alert archive is not enabled
var ErrArchiveDisabled = errors.New("alert archive is disabled (storage.badger.enabled = false)")

// soundDrainTimeout bounds how long Close waits for an in-flight notification
const soundDrainTimeout = 3 * time.Second

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	output         io.Writer
	StorageManager interfaces.StorageManager

	// Classification
	Lexicon         *analyzer.Lexicon
	AnalyzerService *analyzer.Service
	PolicyService   *policy.Service

	// Feed
	NewsClient  *newsapi.Client
	FeedService *feed.Service

	// State
	DedupService *dedup.Service

	// Output
	Display  *display.Console
	Notifier *notifier.Sound

	// Cycle driving
	MonitorService   *monitor.Service
	SchedulerService *scheduler.Service

	closeOnce sync.Once
	closeErr  error
}

// Option customises App construction
type Option func(*App)

// WithOutput sets where alerts are rendered (stdout by default)
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.output = w
		}
	}
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger, opts ...Option) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
		output:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info().
		Int("keywords", app.Lexicon.KeywordCount()).
		Int("assets", app.Lexicon.AssetCount()).
		Str("min_importance", app.PolicyService.MinDisplay()).
		Str("schedule", cfg.Monitor.CronSchedule()).
		Int("seen", app.DedupService.Count()).
		Bool("sound", app.Notifier.Enabled()).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (seen file and alert archive)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager
	return nil
}

// initServices builds the services in dependency order
func (a *App) initServices() error {
	cfg := a.Config

	// 1. Lexicon and classifier
	lexicon, err := analyzer.LexiconFromConfig(cfg.Lexicon)
	if err != nil {
		return fmt.Errorf("invalid lexicon: %w", err)
	}
	a.Lexicon = lexicon
	a.AnalyzerService = analyzer.NewService(lexicon, nil, a.Logger)

	// 2. Decision policy (tier ranks come from the lexicon)
	a.PolicyService = policy.NewService(a.Logger, lexicon.TierNames(), cfg.Display.MinImportance, cfg.Display.NeutralMinImportance)

	// 3. Feed
	timeout, err := cfg.Feed.TimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid feed timeout: %w", err)
	}
	a.NewsClient = newsapi.NewClient(cfg.Feed.APIKey,
		newsapi.WithBaseURL(cfg.Feed.BaseURL),
		newsapi.WithTimeout(timeout),
		newsapi.WithRateLimit(cfg.Feed.RateLimit),
		newsapi.WithLogger(a.Logger),
	)
	a.FeedService = feed.NewService(a.NewsClient, a.Logger)

	// 4. Seen-set
	a.DedupService = dedup.NewService(a.StorageManager.SeenStorage(), a.Logger)
	a.DedupService.Load(a.ctx)

	// 5. Output
	a.Display = display.NewConsole(cfg.Display, a.output, a.Logger)
	a.Notifier = notifier.NewSound(cfg.Sound, a.output, a.Logger)

	// 6. Cycle driver and scheduler
	cycleTimeout, err := cfg.Monitor.CycleTimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid cycle timeout: %w", err)
	}
	a.MonitorService = monitor.NewService(
		a.FeedService,
		a.AnalyzerService,
		a.DedupService,
		a.PolicyService,
		a.Display,
		a.Notifier,
		a.StorageManager.AlertStorage(),
		models.FeedQuery{
			Query:    cfg.Feed.Query,
			Language: cfg.Feed.Language,
			SortBy:   cfg.Feed.SortBy,
			PageSize: cfg.Feed.PageSize,
		},
		cycleTimeout,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.Logger)
	if err := a.SchedulerService.RegisterJob(monitor.JobName, cfg.Monitor.CronSchedule(), "Check the news feed for new articles", a.MonitorService.Job(a.ctx)); err != nil {
		return fmt.Errorf("failed to register news check: %w", err)
	}

	return nil
}

// Start runs the first cycle immediately, then hands over to the scheduler.
// A failed first cycle is logged and does not prevent scheduling.
func (a *App) Start() error {
	a.Logger.Info().Msg("Starting main loop and performing initial check")

	if err := a.SchedulerService.TriggerJob(monitor.JobName); err != nil {
		a.Logger.Warn().Err(err).Msg("Initial news check failed")
	}

	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.Logger.Info().
		Str("schedule", a.Config.Monitor.CronSchedule()).
		Msg("Scheduled news check")
	return nil
}

// RunOnce performs a single cycle without starting the scheduler
func (a *App) RunOnce() (*models.CycleSummary, error) {
	return a.MonitorService.RunCycle(a.ctx)
}

// History returns the most recently displayed alerts, newest first
func (a *App) History(ctx context.Context, limit int) ([]*models.AlertRecord, error) {
	alerts := a.StorageManager.AlertStorage()
	if alerts == nil {
		return nil, ErrArchiveDisabled
	}
	return alerts.ListRecent(ctx, limit)
}

// Close stops the scheduler, flushes the seen-set and releases storage. Safe to call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.closeErr = a.close()
	})
	return a.closeErr
}

func (a *App) close() error {
	var errs []error

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
			errs = append(errs, err)
		}
	}

	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.Notifier != nil && !a.Notifier.Wait(soundDrainTimeout) {
		a.Logger.Debug().Msg("Notification still playing at shutdown")
	}

	if a.DedupService != nil {
		// Fresh context: the app context is already cancelled
		if err := a.DedupService.Flush(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to save seen articles: %w", err))
		} else {
			a.Logger.Info().Int("count", a.DedupService.Count()).Msg("Seen articles saved")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
