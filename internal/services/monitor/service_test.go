package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/models"
	"github.com/ternarybob/newswatch/internal/services/dedup"
	"github.com/ternarybob/newswatch/internal/services/policy"
)

// fakeFeed serves queued batches, newest first
type fakeFeed struct {
	batches [][]models.Article
	errs    []error
	calls   int
}

func (f *fakeFeed) FetchBatch(ctx context.Context, _ models.FeedQuery) ([]models.Article, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.batches) {
		return f.batches[i], nil
	}
	return nil, nil
}

// fakeAnalyzer returns a fixed analysis per URL and panics for poisoned URLs
type fakeAnalyzer struct {
	results  map[string]models.Analysis
	poisoned map[string]bool
	analyzed []string
}

func (a *fakeAnalyzer) Analyze(article *models.Article) models.Analysis {
	a.analyzed = append(a.analyzed, article.URL)
	if a.poisoned[article.URL] {
		panic("analyzer exploded")
	}
	if result, ok := a.results[article.URL]; ok {
		return result
	}
	return models.Analysis{Sentiment: models.SentimentNeutral, Importance: "Low", RelatedAssets: []string{models.MarketWide}}
}

type fakeDisplay struct {
	shown []string
}

func (d *fakeDisplay) Show(article *models.Article, _ *models.Analysis) {
	d.shown = append(d.shown, article.URL)
}

type fakeNotifier struct {
	plays   int
	enabled bool
}

func (n *fakeNotifier) PlayAlert()    { n.plays++ }
func (n *fakeNotifier) Enabled() bool { return n.enabled }

type fakeAlerts struct {
	saved []*models.AlertRecord
}

func (a *fakeAlerts) SaveAlert(_ context.Context, alert *models.AlertRecord) error {
	a.saved = append(a.saved, alert)
	return nil
}
func (a *fakeAlerts) GetAlert(context.Context, string) (*models.AlertRecord, error) { return nil, nil }
func (a *fakeAlerts) ListRecent(context.Context, int) ([]*models.AlertRecord, error) {
	return a.saved, nil
}
func (a *fakeAlerts) ListByCycle(context.Context, string) ([]*models.AlertRecord, error) {
	return nil, nil
}
func (a *fakeAlerts) CountAlerts(context.Context) (int, error) { return len(a.saved), nil }

// memorySeen is an in-memory SeenStorage
type memorySeen struct {
	urls []string
}

func (m *memorySeen) LoadSeen(context.Context) ([]string, error) { return m.urls, nil }
func (m *memorySeen) SaveSeen(_ context.Context, urls []string) error {
	m.urls = append([]string(nil), urls...)
	return nil
}
func (m *memorySeen) Location() string { return "memory" }

type harness struct {
	service  *Service
	feed     *fakeFeed
	analyzer *fakeAnalyzer
	dedup    *dedup.Service
	display  *fakeDisplay
	notifier *fakeNotifier
	alerts   *fakeAlerts
}

func newHarness(t *testing.T, feed *fakeFeed, results map[string]models.Analysis) *harness {
	t.Helper()
	logger := arbor.NewLogger()

	h := &harness{
		feed:     feed,
		analyzer: &fakeAnalyzer{results: results, poisoned: map[string]bool{}},
		dedup:    dedup.NewService(&memorySeen{}, logger),
		display:  &fakeDisplay{},
		notifier: &fakeNotifier{enabled: true},
		alerts:   &fakeAlerts{},
	}
	h.dedup.Load(context.Background())

	decisions := policy.NewService(logger, []string{"Low", "Medium", "High", "Critical"}, "Medium", "High")
	h.service = NewService(feed, h.analyzer, h.dedup, decisions, h.display, h.notifier, h.alerts,
		models.FeedQuery{Query: "bitcoin", PageSize: 10}, time.Second, logger)
	return h
}

func articles(urls ...string) []models.Article {
	batch := make([]models.Article, len(urls))
	for i, url := range urls {
		batch[i] = models.Article{URL: url, Title: "Title " + url}
	}
	return batch
}

func qualifying(urls ...string) map[string]models.Analysis {
	results := make(map[string]models.Analysis, len(urls))
	for _, url := range urls {
		results[url] = models.Analysis{
			Sentiment:     models.SentimentNegative,
			Importance:    "High",
			RelatedAssets: []string{"BTC"},
		}
	}
	return results
}

func TestRunCycle_FirstRunSoundsOnce(t *testing.T) {
	results := qualifying("https://1", "https://2", "https://3", "https://4", "https://5")
	feed := &fakeFeed{batches: [][]models.Article{
		articles("https://3", "https://2", "https://1"),
		articles("https://5", "https://4", "https://3", "https://2", "https://1"),
	}}
	h := newHarness(t, feed, results)
	ctx := context.Background()

	assert.True(t, h.service.IsFirstRun())
	summary, err := h.service.RunCycle(ctx)
	require.NoError(t, err)

	assert.True(t, summary.FirstRun)
	assert.Equal(t, 3, summary.Displayed)
	assert.Equal(t, 1, summary.Sounds)
	assert.Equal(t, 1, h.notifier.plays)
	assert.False(t, h.service.IsFirstRun())

	summary, err = h.service.RunCycle(ctx)
	require.NoError(t, err)

	assert.False(t, summary.FirstRun)
	assert.Equal(t, 5, summary.Fetched)
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 2, summary.Displayed)
	assert.Equal(t, 2, summary.Sounds)
	assert.Equal(t, 3, h.notifier.plays)

	require.Len(t, h.alerts.saved, 5)
	assert.True(t, h.alerts.saved[0].SoundPlayed)
	assert.False(t, h.alerts.saved[1].SoundPlayed)
	assert.True(t, h.alerts.saved[0].FirstRun)
	assert.False(t, h.alerts.saved[4].FirstRun)
	assert.NotEqual(t, h.alerts.saved[0].CycleID, h.alerts.saved[4].CycleID)
}

func TestRunCycle_ProcessesOldestFirst(t *testing.T) {
	feed := &fakeFeed{batches: [][]models.Article{articles("https://new", "https://mid", "https://old")}}
	h := newHarness(t, feed, qualifying("https://new", "https://mid", "https://old"))

	_, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://old", "https://mid", "https://new"}, h.display.shown)
	assert.Equal(t, []string{"https://old", "https://mid", "https://new"}, h.analyzer.analyzed)
}

func TestRunCycle_FetchErrorChangesNothing(t *testing.T) {
	fetchErr := errors.New("connection refused")
	feed := &fakeFeed{errs: []error{fetchErr}}
	h := newHarness(t, feed, nil)

	summary, err := h.service.RunCycle(context.Background())
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 0, summary.Fetched)
	assert.True(t, h.service.IsFirstRun(), "first-run flag survives a failed fetch")
	assert.Equal(t, 0, h.dedup.Count())
	assert.Empty(t, h.display.shown)
	assert.NotNil(t, h.service.LastSummary())
}

func TestRunCycle_EmptyBatchClearsFirstRun(t *testing.T) {
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{{}}}, nil)

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Fetched)
	assert.False(t, h.service.IsFirstRun())
}

func TestRunCycle_SkipsSeenAndMissingURL(t *testing.T) {
	batch := articles("https://fresh", "", "https://known")
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{batch}}, qualifying("https://fresh", "https://known"))
	h.dedup.MarkSeen(context.Background(), "https://known")

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 1, summary.New)
	assert.Equal(t, []string{"https://fresh"}, h.display.shown)
	assert.Equal(t, []string{"https://fresh"}, h.analyzer.analyzed)
	assert.Equal(t, 2, h.dedup.Count())
}

func TestRunCycle_PoisonArticleIsMarkedSeen(t *testing.T) {
	batch := articles("https://good", "https://poison")
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{batch, batch}}, qualifying("https://good", "https://poison"))
	h.analyzer.poisoned["https://poison"] = true

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Displayed)
	assert.False(t, h.dedup.IsNew("https://poison"))
	assert.Equal(t, []string{"https://good"}, h.display.shown)

	// Never retried
	summary, err = h.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.New)
	assert.Equal(t, []string{"https://poison", "https://good"}, h.analyzer.analyzed)
}

func TestRunCycle_HiddenArticlesAreStillSeen(t *testing.T) {
	results := map[string]models.Analysis{
		"https://neutral-medium": {Sentiment: models.SentimentNeutral, Importance: "Medium"},
		"https://error":          {Sentiment: models.SentimentError, Importance: "Critical"},
		"https://low":            {Sentiment: models.SentimentPositive, Importance: "Low"},
	}
	batch := articles("https://neutral-medium", "https://error", "https://low")
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{batch}}, results)

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.New)
	assert.Equal(t, 0, summary.Displayed)
	assert.Equal(t, 0, h.notifier.plays)
	assert.Empty(t, h.alerts.saved)
	assert.Equal(t, 3, h.dedup.Count())
}

func TestRunCycle_PanicClearsFirstRun(t *testing.T) {
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{articles("https://a")}}, qualifying("https://a"))
	h.service.display = nil // Show on a nil interface panics

	summary, err := h.service.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.NotNil(t, summary)
	assert.False(t, h.service.IsFirstRun())
}

func TestRunCycle_CancelledContextStopsEarly(t *testing.T) {
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{articles("https://b", "https://a")}}, qualifying("https://a", "https://b"))

	ctx, cancel := context.WithCancel(context.Background())
	h.feed = &fakeFeed{batches: h.feed.batches}
	h.service.feed = cancellingFeed{inner: h.feed, cancel: cancel}

	summary, err := h.service.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 0, summary.New)
	assert.Equal(t, 0, h.dedup.Count(), "unprocessed articles stay new")
}

// cancellingFeed cancels the cycle context once the batch is returned
type cancellingFeed struct {
	inner  *fakeFeed
	cancel context.CancelFunc
}

func (c cancellingFeed) FetchBatch(ctx context.Context, query models.FeedQuery) ([]models.Article, error) {
	batch, err := c.inner.FetchBatch(ctx, query)
	c.cancel()
	return batch, err
}

func TestRunCycle_DisabledNotifierRecordsNoSound(t *testing.T) {
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{articles("https://a")}}, qualifying("https://a"))
	h.notifier.enabled = false

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sounds)
	require.Len(t, h.alerts.saved, 1)
	assert.False(t, h.alerts.saved[0].SoundPlayed)
}

func TestRunCycle_NoArchive(t *testing.T) {
	h := newHarness(t, &fakeFeed{batches: [][]models.Article{articles("https://a")}}, qualifying("https://a"))
	h.service.alerts = nil

	summary, err := h.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Displayed)
}

func TestJob(t *testing.T) {
	fetchErr := errors.New("timeout")
	h := newHarness(t, &fakeFeed{errs: []error{fetchErr}}, nil)

	job := h.service.Job(context.Background())
	assert.ErrorIs(t, job(), fetchErr)
	assert.NoError(t, job())
	assert.Equal(t, 2, h.feed.calls)
}
