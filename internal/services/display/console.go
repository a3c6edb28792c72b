package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
)

const (
	// DateLayout is the layout of the published time line
	DateLayout = "2006-01-02 15:04:05 MST"

	// NoDate is printed when an article carries no published time
	NoDate = "No Date"

	notAvailable = "N/A"
)

var (
	stylePositive  = color.New(color.FgGreen)
	styleNegative  = color.New(color.FgRed)
	styleNeutral   = color.New(color.FgYellow)
	styleImportant = color.New(color.FgMagenta, color.OpBold)
	styleAssets    = color.New(color.FgGreen)
	styleError     = color.New(color.FgGray)
)

// Console renders alerts as framed text blocks
type Console struct {
	out      io.Writer
	colorize bool
	width    int
	location *time.Location
	logger   arbor.ILogger
	mu       sync.Mutex
}

// Compile-time assertion
var _ interfaces.Display = (*Console)(nil)

// NewConsole creates a console display writing to out (stdout when nil)
func NewConsole(config common.DisplayConfig, out io.Writer, logger arbor.ILogger) *Console {
	if out == nil {
		out = os.Stdout
	}
	width := config.Width
	if width <= 0 {
		width = 80
	}

	return &Console{
		out:      out,
		colorize: config.Color,
		width:    width,
		location: time.Local,
		logger:   logger,
	}
}

// WithLocation sets the timezone used for published times
func (c *Console) WithLocation(loc *time.Location) *Console {
	if loc != nil {
		c.location = loc
	}
	return c
}

// Show prints the article block
func (c *Console) Show(article *models.Article, analysis *models.Analysis) {
	if article == nil || analysis == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.out, c.Render(article, analysis)); err != nil {
		c.logger.Warn().Err(err).Str("url", article.URL).Msg("Failed to write article to console")
	}
}

// Render builds the article block without writing it
func (c *Console) Render(article *models.Article, analysis *models.Analysis) string {
	rule := strings.Repeat("=", c.width)

	importance := orNA(analysis.Importance)
	header := fmt.Sprintf("ARTICLE (%s)", importance)
	if isImportant(importance) {
		header = c.paint(styleImportant, header)
	}

	assets := notAvailable
	if len(analysis.RelatedAssets) > 0 {
		assets = strings.Join(analysis.RelatedAssets, ", ")
	}

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "📰 %s | %s | %s\n", header, orNA(article.SourceName), FormatPublished(article.PublishedAt, c.location))
	fmt.Fprintf(&b, "📌 Title: %s\n", orNA(article.Title))
	fmt.Fprintf(&b, "🔗 URL: %s\n", orNA(article.URL))
	b.WriteString("📊 Analysis:\n")
	fmt.Fprintf(&b, "   - Sentiment: %s\n", c.paint(sentimentStyle(analysis.Sentiment), fmt.Sprintf("%s (Score: %.2f)", orNA(analysis.Sentiment), analysis.SentimentScore)))
	fmt.Fprintf(&b, "   - Importance: %s (Score: %d)\n", importance, analysis.ImportanceScore)
	fmt.Fprintf(&b, "   - Related Coins: %s\n", c.paint(styleAssets, assets))
	if len(analysis.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "   - Keywords: %s\n", strings.Join(analysis.MatchedKeywords, ", "))
	}
	b.WriteString(rule + "\n\n")

	return b.String()
}

func (c *Console) paint(style color.Style, s string) string {
	if !c.colorize {
		return s
	}
	return style.Sprint(s)
}

// FormatPublished renders an ISO-8601 timestamp in loc.
// Empty input gives "No Date"; unparseable input is returned unchanged.
func FormatPublished(published string, loc *time.Location) string {
	published = strings.TrimSpace(published)
	if published == "" {
		return NoDate
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, published); err == nil {
			return t.In(loc).Format(DateLayout)
		}
	}

	return published
}

func sentimentStyle(sentiment string) color.Style {
	switch sentiment {
	case models.SentimentPositive:
		return stylePositive
	case models.SentimentNegative:
		return styleNegative
	case models.SentimentError:
		return styleError
	default:
		return styleNeutral
	}
}

func isImportant(importance string) bool {
	return importance == "High" || importance == "Critical"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
