package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalScorer_Polarity(t *testing.T) {
	scorer := NewLexicalScorer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no polar words", "The committee meets on Tuesday", 0},
		{"single positive", "Results were excellent", 1.0},
		{"single negative", "Exchange hacked", -0.8},
		{"average of words", "Bitcoin rally looks excellent", 0.75},
		{"negation dampens and flips", "This is not good", -0.35},
		{"contraction negates", "Analysts don't expect a rally", -0.25},
		{"negation lapses after scope", "Not that anyone in markets expected gains", 0.5},
		{"negation stops at clause", "No surprise, prices rise", 0.4},
		{"intensifier", "Very good quarter", 0.91},
		{"intensifier is clamped", "Extremely excellent", 1.0},
		{"diminisher", "Slightly bearish tone", -0.3},
		{"curly apostrophe", "Traders aren’t optimistic", -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Polarity(tt.text)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, -1.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestLexicalScorer_Deterministic(t *testing.T) {
	scorer := NewLexicalScorer()
	text := "Ethereum surges as ETF approval nears, but regulators warn of risk"

	first, err := scorer.Polarity(text)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := scorer.Polarity(text)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"it's", "a", "bull", "run", "2024"}, tokenize("It's a BULL-run (2024)"))
	assert.Equal(t, []string{"don't"}, tokenize("'don't'"))
	assert.Empty(t, tokenize("  --  "))
}
