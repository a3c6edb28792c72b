package interfaces

import (
	"context"

	"github.com/ternarybob/newswatch/internal/models"
)

// FeedService fetches a batch of candidate articles from the news provider.
// Returned articles always carry a URL and a title, newest first.
type FeedService interface {
	FetchBatch(ctx context.Context, query models.FeedQuery) ([]models.Article, error)
}

// Analyzer classifies an article. It never fails: errors degrade to safe defaults.
type Analyzer interface {
	Analyze(article *models.Article) models.Analysis
}

// DedupStore tracks which articles have already been processed
type DedupStore interface {
	// Load replaces the in-memory set with the persisted one and returns its size
	Load(ctx context.Context) int
	IsNew(url string) bool

	// MarkSeen adds url and persists the full set. Returns false if url was already present.
	MarkSeen(ctx context.Context, url string) bool
	Count() int
	Flush(ctx context.Context) error
}

// DecisionPolicy decides whether an analysed article is shown and whether it makes a sound
type DecisionPolicy interface {
	Decide(analysis models.Analysis, isFirstRun bool, soundAlreadyPlayed bool) models.Decision
	MinDisplay() string
}

// Notifier plays an audible alert. Fire-and-forget, never blocks the caller.
type Notifier interface {
	PlayAlert()
	Enabled() bool
}

// Display renders an article and its analysis to the user
type Display interface {
	Show(article *models.Article, analysis *models.Analysis)
}
