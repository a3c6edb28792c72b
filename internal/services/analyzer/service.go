package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
)

// ContentPrefixLength is how many characters of the article body are analysed
const ContentPrefixLength = 250

// Polarity thresholds: above positiveThreshold is Positive, below negativeThreshold is Negative
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Service classifies articles by sentiment, related assets and importance
type Service struct {
	lexicon *Lexicon
	scorer  SentimentScorer
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.Analyzer = (*Service)(nil)

// NewService creates an analyzer over lexicon. A nil scorer uses the built-in LexicalScorer.
func NewService(lexicon *Lexicon, scorer SentimentScorer, logger arbor.ILogger) *Service {
	if scorer == nil {
		scorer = NewLexicalScorer()
	}

	logger.Debug().
		Int("keywords", lexicon.KeywordCount()).
		Int("assets", lexicon.AssetCount()).
		Strs("tiers", lexicon.TierNames()).
		Msg("Analyzer initialized")

	return &Service{
		lexicon: lexicon,
		scorer:  scorer,
		logger:  logger,
	}
}

// Lexicon returns the lexicon the analyzer scores against
func (s *Service) Lexicon() *Lexicon {
	return s.lexicon
}

// Analyze classifies one article. All three scores are computed over the same assembled text.
func (s *Service) Analyze(article *models.Article) models.Analysis {
	text := AssembleText(article)

	sentiment, sentimentScore := s.Sentiment(text)
	importance, importanceScore, matched := s.lexicon.ScoreImportance(text)

	analysis := models.Analysis{
		Sentiment:       sentiment,
		SentimentScore:  sentimentScore,
		Importance:      importance,
		ImportanceScore: importanceScore,
		RelatedAssets:   s.lexicon.RelatedAssets(text),
		MatchedKeywords: matched,
	}

	if article != nil {
		s.logger.Debug().
			Str("title", truncate(article.Title, 50)).
			Str("sentiment", analysis.Sentiment).
			Str("importance", analysis.Importance).
			Int("importance_score", analysis.ImportanceScore).
			Strs("assets", analysis.RelatedAssets).
			Strs("keywords", analysis.MatchedKeywords).
			Msg("Article analysed")
	}

	return analysis
}

// Sentiment labels text by polarity. Empty text is Neutral/0; a scorer failure or panic is Error/0.
func (s *Service) Sentiment(text string) (label string, score float64) {
	if strings.TrimSpace(text) == "" {
		return models.SentimentNeutral, 0
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("Sentiment scoring panicked")
			label, score = models.SentimentError, 0
		}
	}()

	polarity, err := s.scorer.Polarity(text)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sentiment scoring failed")
		return models.SentimentError, 0
	}

	return LabelFor(polarity), round3(polarity)
}

// LabelFor maps a polarity to its sentiment label
func LabelFor(polarity float64) string {
	switch {
	case polarity > positiveThreshold:
		return models.SentimentPositive
	case polarity < negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// AssembleText joins title, description and the first ContentPrefixLength characters
// of the content with ". ". An article with no text at all yields "".
func AssembleText(article *models.Article) string {
	if article == nil || (article.Title == "" && article.Description == "" && article.Content == "") {
		return ""
	}

	text := article.Title + ". " + article.Description
	if article.Content != "" {
		text += ". " + truncate(article.Content, ContentPrefixLength)
	}
	return text
}

// truncate returns at most n characters (runes) of s
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
