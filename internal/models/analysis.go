package models

// Sentiment labels produced by the analyzer
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
	SentimentError    = "Error"
)

// MarketWide is the related-asset marker used when no tracked asset is mentioned
const MarketWide = "MARKET_WIDE"

// Analysis is the classification result for one article
type Analysis struct {
	Sentiment       string   `json:"sentiment"`
	SentimentScore  float64  `json:"sentiment_score"` // Polarity in [-1, 1], rounded to 3 decimals
	Importance      string   `json:"importance"`      // Tier name, e.g. "Low", "Critical"
	ImportanceScore int      `json:"importance_score"`
	RelatedAssets   []string `json:"related_assets"` // Sorted symbols, or [MARKET_WIDE]
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// IsPolarized reports whether the sentiment is Positive or Negative
func (a Analysis) IsPolarized() bool {
	return a.Sentiment == SentimentPositive || a.Sentiment == SentimentNegative
}

// Decision is the outcome of the display policy for one analysed article
type Decision struct {
	Display bool
	Sound   bool
}
