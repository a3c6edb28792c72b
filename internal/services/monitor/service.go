package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
)

// JobName is the scheduler job that runs a cycle
const JobName = "news_check"

// DefaultFetchTimeout bounds the feed call when no timeout is configured
const DefaultFetchTimeout = 30 * time.Second

// Service drives polling cycles: fetch, classify, decide, alert, remember
type Service struct {
	feed     interfaces.FeedService
	analyzer interfaces.Analyzer
	dedup    interfaces.DedupStore
	policy   interfaces.DecisionPolicy
	display  interfaces.Display
	notifier interfaces.Notifier
	alerts   interfaces.AlertStorage // nil when the archive is disabled
	query    models.FeedQuery
	timeout  time.Duration
	logger   arbor.ILogger

	mu          sync.Mutex
	isFirstRun  bool
	lastSummary *models.CycleSummary
}

// NewService creates the cycle driver. alerts may be nil.
func NewService(
	feed interfaces.FeedService,
	analyzer interfaces.Analyzer,
	dedup interfaces.DedupStore,
	policy interfaces.DecisionPolicy,
	display interfaces.Display,
	notifier interfaces.Notifier,
	alerts interfaces.AlertStorage,
	query models.FeedQuery,
	fetchTimeout time.Duration,
	logger arbor.ILogger,
) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}

	return &Service{
		feed:       feed,
		analyzer:   analyzer,
		dedup:      dedup,
		policy:     policy,
		display:    display,
		notifier:   notifier,
		alerts:     alerts,
		query:      query,
		timeout:    fetchTimeout,
		logger:     logger,
		isFirstRun: true,
	}
}

// IsFirstRun reports whether no cycle has completed yet
func (s *Service) IsFirstRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFirstRun
}

func (s *Service) completeFirstRun() {
	s.mu.Lock()
	s.isFirstRun = false
	s.mu.Unlock()
}

// LastSummary returns the counters of the most recent cycle, nil before the first one
func (s *Service) LastSummary() *models.CycleSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSummary == nil {
		return nil
	}
	summary := *s.lastSummary
	return &summary
}

// Job returns a scheduler handler running one cycle under ctx
func (s *Service) Job(ctx context.Context) func() error {
	return func() error {
		_, err := s.RunCycle(ctx)
		return err
	}
}

// RunCycle performs one polling cycle.
//
// A fetch failure aborts the cycle before any state changes, including the first-run flag.
// Otherwise the batch is processed oldest first and the first-run flag is cleared when the
// cycle ends, even if it panics.
func (s *Service) RunCycle(ctx context.Context) (summary *models.CycleSummary, err error) {
	start := time.Now()
	firstRun := s.IsFirstRun()
	summary = &models.CycleSummary{
		CycleID:  uuid.New().String(),
		FirstRun: firstRun,
	}

	defer func() {
		if r := recover(); r != nil {
			s.completeFirstRun()
			err = fmt.Errorf("cycle %s panicked: %v", summary.CycleID, r)
			s.logger.Error().
				Str("cycle_id", summary.CycleID).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Critical error during news check")
		}
		summary.Duration = time.Since(start)
		s.mu.Lock()
		recorded := *summary
		s.lastSummary = &recorded
		s.mu.Unlock()
	}()

	s.logger.Info().
		Str("cycle_id", summary.CycleID).
		Bool("first_run", firstRun).
		Msg("Checking for new articles")

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	articles, err := s.feed.FetchBatch(fetchCtx, s.query)
	cancel()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("cycle_id", summary.CycleID).
			Msg("Failed to fetch news - waiting for the next check")
		return summary, err
	}

	summary.Fetched = len(articles)
	if len(articles) == 0 {
		s.logger.Info().Str("cycle_id", summary.CycleID).Msg("No articles returned by the feed")
		s.completeFirstRun()
		return summary, nil
	}

	soundPlayed := false

	// The feed is newest first; alerts are shown oldest first
	for i := len(articles) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			s.logger.Info().
				Str("cycle_id", summary.CycleID).
				Int("remaining", i+1).
				Msg("Cycle interrupted - remaining articles left for the next run")
			break
		}

		article := &articles[i]
		if article.URL == "" {
			s.logger.Warn().Str("title", article.Title).Msg("Skipping article with no URL")
			continue
		}
		if !s.dedup.IsNew(article.URL) {
			continue
		}
		summary.New++

		analysis, ok := s.classify(article)
		if !ok {
			summary.Failed++
			s.dedup.MarkSeen(ctx, article.URL)
			continue
		}

		decision := s.policy.Decide(analysis, firstRun, soundPlayed)
		if decision.Display {
			summary.Displayed++
			s.logger.Info().
				Str("importance", analysis.Importance).
				Str("sentiment", analysis.Sentiment).
				Str("title", article.Title).
				Msg("New article displayed")

			s.display.Show(article, &analysis)

			if decision.Sound {
				soundPlayed = true
				summary.Sounds++
				s.notifier.PlayAlert()
			}

			s.archive(ctx, summary.CycleID, article, analysis, decision.Sound && s.notifier.Enabled(), firstRun)
		} else {
			s.logger.Debug().
				Str("importance", analysis.Importance).
				Str("sentiment", analysis.Sentiment).
				Str("min_display", s.policy.MinDisplay()).
				Str("title", article.Title).
				Msg("Article not displayed")
		}

		s.dedup.MarkSeen(ctx, article.URL)
	}

	s.completeFirstRun()
	s.logSummary(summary, time.Since(start))

	return summary, nil
}

// classify runs the analyzer, turning a panic into a skipped article
func (s *Service) classify(article *models.Article) (analysis models.Analysis, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("url", article.URL).
				Str("title", article.Title).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Error analyzing article")
			analysis, ok = models.Analysis{}, false
		}
	}()

	return s.analyzer.Analyze(article), true
}

func (s *Service) archive(ctx context.Context, cycleID string, article *models.Article, analysis models.Analysis, sound bool, firstRun bool) {
	if s.alerts == nil {
		return
	}

	record := &models.AlertRecord{
		ID:          uuid.New().String(),
		CycleID:     cycleID,
		Article:     *article,
		Analysis:    analysis,
		SoundPlayed: sound,
		FirstRun:    firstRun,
		DisplayedAt: time.Now(),
	}

	if err := s.alerts.SaveAlert(ctx, record); err != nil {
		s.logger.Warn().
			Err(err).
			Str("url", article.URL).
			Msg("Failed to archive alert")
	}
}

func (s *Service) logSummary(summary *models.CycleSummary, elapsed time.Duration) {
	event := s.logger.Info().
		Str("cycle_id", summary.CycleID).
		Int("fetched", summary.Fetched).
		Int("new", summary.New).
		Int("displayed", summary.Displayed).
		Int("failed", summary.Failed).
		Int("sounds", summary.Sounds).
		Int("seen_total", s.dedup.Count()).
		Str("duration", elapsed.String())

	if summary.Displayed > 0 {
		event.Msg("Processed new, important and displayed articles")
		return
	}
	event.Msg("No new articles to display in this check cycle")
}
