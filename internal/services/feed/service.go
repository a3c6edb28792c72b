package feed

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
	"github.com/ternarybob/newswatch/internal/newsapi"
)

// NewsClient is the subset of the NewsAPI client the feed needs
type NewsClient interface {
	Everything(ctx context.Context, query string, opts ...newsapi.QueryOption) (*newsapi.EverythingResponse, error)
}

// truncationMarker matches the "[+1234 chars]" suffix NewsAPI appends to truncated content
var truncationMarker = regexp.MustCompile(`\s*(?:…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)

// Service fetches article batches from NewsAPI
type Service struct {
	client NewsClient
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.FeedService = (*Service)(nil)

// NewService creates a feed service over client
func NewService(client NewsClient, logger arbor.ILogger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// FetchBatch returns the current batch for query, newest first as the provider orders it.
// Entries without a title or URL are dropped. Any transport or API failure is returned unchanged
// so the caller can abort the cycle without touching state.
func (s *Service) FetchBatch(ctx context.Context, query models.FeedQuery) ([]models.Article, error) {
	resp, err := s.client.Everything(ctx, query.Query,
		newsapi.WithLanguage(query.Language),
		newsapi.WithSortBy(query.SortBy),
		newsapi.WithPageSize(query.PageSize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		title := strings.TrimSpace(raw.Title)
		url := strings.TrimSpace(raw.URL)
		if title == "" || url == "" {
			continue
		}

		articles = append(articles, models.Article{
			URL:         url,
			Title:       cleanText(title),
			Description: cleanText(raw.Description),
			Content:     cleanText(truncationMarker.ReplaceAllString(raw.Content, "")),
			PublishedAt: strings.TrimSpace(raw.PublishedAt),
			SourceName:  strings.TrimSpace(raw.Source.Name),
			Author:      strings.TrimSpace(raw.Author),
		})
	}

	if skipped := len(resp.Articles) - len(articles); skipped > 0 {
		s.logger.Warn().
			Int("skipped", skipped).
			Msg("Articles skipped due to missing title or url")
	}

	s.logger.Info().
		Int("fetched", len(articles)).
		Str("query", abbreviate(query.Query, 50)).
		Msg("Fetched articles")

	return articles, nil
}

// cleanText strips markup and entities and collapses whitespace.
// Plain text skips the HTML parser.
func cleanText(s string) string {
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

func abbreviate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
