package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/models"
)

const feedBody = `{"status":"ok","totalResults":2,"articles":[
	{"source":{"id":null,"name":"Desk"},"author":null,"title":"Bitcoin price trend in focus",
	 "description":null,"url":"https://example.com/neutral","publishedAt":"2026-03-01T10:05:00Z","content":null},
	{"source":{"id":null,"name":"Desk"},"author":null,"title":"Bitcoin price trend looks excellent",
	 "description":null,"url":"https://example.com/positive","publishedAt":"2026-03-01T10:00:00Z","content":null}
]}`

func newTestConfig(t *testing.T, serverURL string, archive bool) *common.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Feed.APIKey = "test-key"
	cfg.Feed.BaseURL = serverURL
	cfg.Feed.RateLimit = 100
	cfg.Display.Color = false
	cfg.Sound.Enabled = false
	cfg.Storage.SeenFile = filepath.Join(dir, "seen_news.json")
	cfg.Storage.Badger.Enabled = archive
	cfg.Storage.Badger.Path = filepath.Join(dir, "alerts")
	require.NoError(t, cfg.Validate())
	return cfg
}

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestApp_RunOnce(t *testing.T) {
	server := newFeedServer(t, feedBody)
	cfg := newTestConfig(t, server.URL, true)
	out := &bytes.Buffer{}

	application, err := New(cfg, arbor.NewLogger(), WithOutput(out))
	require.NoError(t, err)

	summary, err := application.RunOnce()
	require.NoError(t, err)
	assert.True(t, summary.FirstRun)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 1, summary.Displayed)

	assert.Contains(t, out.String(), "Bitcoin price trend looks excellent")
	assert.NotContains(t, out.String(), "in focus")

	history, err := application.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "https://example.com/positive", history[0].Article.URL)
	assert.Equal(t, models.SentimentPositive, history[0].Analysis.Sentiment)
	assert.Equal(t, summary.CycleID, history[0].CycleID)

	require.NoError(t, application.Close())
	assert.NoError(t, application.Close(), "close is idempotent")

	data, err := os.ReadFile(cfg.Storage.SeenFile)
	require.NoError(t, err)
	var seen []string
	require.NoError(t, json.Unmarshal(data, &seen))
	assert.Equal(t, []string{"https://example.com/neutral", "https://example.com/positive"}, seen)
}

func TestApp_RestartRemembersSeen(t *testing.T) {
	server := newFeedServer(t, feedBody)
	cfg := newTestConfig(t, server.URL, false)

	first, err := New(cfg, arbor.NewLogger(), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	_, err = first.RunOnce()
	require.NoError(t, err)
	require.NoError(t, first.Close())

	out := &bytes.Buffer{}
	second, err := New(cfg, arbor.NewLogger(), WithOutput(out))
	require.NoError(t, err)
	defer second.Close()

	summary, err := second.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.New)
	assert.Empty(t, out.String())
}

func TestApp_HistoryDisabled(t *testing.T) {
	server := newFeedServer(t, feedBody)
	application, err := New(newTestConfig(t, server.URL, false), arbor.NewLogger(), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	defer application.Close()

	_, err = application.History(context.Background(), 5)
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}

func TestApp_StartRunsInitialCycle(t *testing.T) {
	server := newFeedServer(t, feedBody)
	application, err := New(newTestConfig(t, server.URL, false), arbor.NewLogger(), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	require.NoError(t, application.Start())
	assert.False(t, application.MonitorService.IsFirstRun())
	assert.True(t, application.SchedulerService.IsRunning())
	assert.Equal(t, 2, application.DedupService.Count())

	require.NoError(t, application.Close())
	assert.False(t, application.SchedulerService.IsRunning())
}

func TestApp_StartSurvivesFailedInitialCycle(t *testing.T) {
	server := newFeedServer(t, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`)
	application, err := New(newTestConfig(t, server.URL, false), arbor.NewLogger(), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.Start())
	assert.True(t, application.MonitorService.IsFirstRun(), "a failed fetch leaves the first-run flag set")

	status, err := application.SchedulerService.GetJobStatus("news_check")
	require.NoError(t, err)
	assert.Contains(t, status.LastError, "apiKeyInvalid")
}

func TestNew_InvalidLexicon(t *testing.T) {
	server := newFeedServer(t, feedBody)
	cfg := newTestConfig(t, server.URL, false)
	cfg.Lexicon.Tiers = []common.TierConfig{{Name: "High", Min: 5}}

	_, err := New(cfg, arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid lexicon")
}
