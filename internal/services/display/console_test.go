package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/models"
)

var sydney = time.FixedZone("AEST", 10*60*60)

func newTestConsole(out *bytes.Buffer, width int) *Console {
	return NewConsole(common.DisplayConfig{Color: false, Width: width}, out, arbor.NewLogger()).WithLocation(sydney)
}

func TestShow(t *testing.T) {
	out := &bytes.Buffer{}
	console := newTestConsole(out, 20)

	console.Show(&models.Article{
		URL:         "https://example.com/sec",
		Title:       "SEC sues exchange",
		SourceName:  "Reuters",
		PublishedAt: "2026-03-01T10:00:00Z",
	}, &models.Analysis{
		Sentiment:       models.SentimentNegative,
		SentimentScore:  -0.4567,
		Importance:      "Critical",
		ImportanceScore: 9,
		RelatedAssets:   []string{models.MarketWide},
		MatchedKeywords: []string{"lawsuit", "sec"},
	})

	rule := strings.Repeat("=", 20)
	want := "\n" + rule + "\n" +
		"📰 ARTICLE (Critical) | Reuters | 2026-03-01 20:00:00 AEST\n" +
		"📌 Title: SEC sues exchange\n" +
		"🔗 URL: https://example.com/sec\n" +
		"📊 Analysis:\n" +
		"   - Sentiment: Negative (Score: -0.46)\n" +
		"   - Importance: Critical (Score: 9)\n" +
		"   - Related Coins: MARKET_WIDE\n" +
		"   - Keywords: lawsuit, sec\n" +
		rule + "\n\n"

	assert.Equal(t, want, out.String())
}

func TestShow_MissingFields(t *testing.T) {
	out := &bytes.Buffer{}
	console := newTestConsole(out, 10)

	console.Show(&models.Article{URL: "https://example.com/x", Title: "T"}, &models.Analysis{})

	text := out.String()
	assert.Contains(t, text, "ARTICLE (N/A) | N/A | No Date")
	assert.Contains(t, text, "Sentiment: N/A (Score: 0.00)")
	assert.Contains(t, text, "Related Coins: N/A")
	assert.NotContains(t, text, "Keywords")
}

func TestShow_NilIsIgnored(t *testing.T) {
	out := &bytes.Buffer{}
	console := newTestConsole(out, 10)

	console.Show(nil, &models.Analysis{})
	console.Show(&models.Article{}, nil)
	assert.Empty(t, out.String())
}

func TestNewConsole_DefaultWidth(t *testing.T) {
	console := NewConsole(common.DisplayConfig{}, &bytes.Buffer{}, arbor.NewLogger())
	assert.Equal(t, 80, console.width)
}

func TestFormatPublished(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", NoDate},
		{"blank", "   ", NoDate},
		{"utc zulu", "2026-03-01T10:00:00Z", "2026-03-01 20:00:00 AEST"},
		{"offset", "2026-03-01T10:00:00+02:00", "2026-03-01 18:00:00 AEST"},
		{"fractional seconds", "2026-03-01T10:00:00.123Z", "2026-03-01 20:00:00 AEST"},
		{"no zone is utc", "2026-03-01T10:00:00", "2026-03-01 20:00:00 AEST"},
		{"unparseable", "yesterday", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPublished(tt.in, sydney))
		})
	}
}

func TestSentimentStyle(t *testing.T) {
	assert.Equal(t, stylePositive, sentimentStyle(models.SentimentPositive))
	assert.Equal(t, styleNegative, sentimentStyle(models.SentimentNegative))
	assert.Equal(t, styleError, sentimentStyle(models.SentimentError))
	assert.Equal(t, styleNeutral, sentimentStyle(models.SentimentNeutral))
}
