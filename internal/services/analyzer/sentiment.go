package analyzer

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// SentimentScorer returns a polarity in [-1, 1] for text
type SentimentScorer interface {
	Polarity(text string) (float64, error)
}

// negationScope is how many plain words a negation reaches forward before it lapses
const negationScope = 3

// negationFactor flips and dampens a negated word: "not good" is mildly negative, not the opposite of good
const negationFactor = -0.5

// LexicalScorer averages word polarities from a fixed lexicon, adjusting for
// intensifiers ("very strong") and negations ("not bullish") within a clause.
type LexicalScorer struct {
	words        map[string]float64
	intensifiers map[string]float64
	negations    map[string]bool
}

// NewLexicalScorer returns a scorer over the built-in market news polarity lexicon
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{
		words:        defaultPolarityWords(),
		intensifiers: defaultIntensifiers(),
		negations:    defaultNegations(),
	}
}

// Polarity scores text. Text without any polar words scores 0.
func (s *LexicalScorer) Polarity(text string) (float64, error) {
	sum := 0.0
	count := 0

	for _, clause := range splitClauses(text) {
		negated := false
		sinceNegation := 0
		multiplier := 1.0

		for _, token := range tokenize(clause) {
			if s.isNegation(token) {
				negated = true
				sinceNegation = 0
				continue
			}
			if f, ok := s.intensifiers[token]; ok {
				multiplier *= f
				continue
			}
			if p, ok := s.words[token]; ok {
				v := p * multiplier
				if negated {
					v *= negationFactor
				}
				sum += clamp(v)
				count++
				multiplier = 1.0
				negated = false
				continue
			}

			multiplier = 1.0
			if negated {
				sinceNegation++
				if sinceNegation >= negationScope {
					negated = false
				}
			}
		}
	}

	if count == 0 {
		return 0, nil
	}

	polarity := sum / float64(count)
	if math.IsNaN(polarity) || math.IsInf(polarity, 0) {
		return 0, fmt.Errorf("polarity is not a number")
	}
	return clamp(polarity), nil
}

func (s *LexicalScorer) isNegation(token string) bool {
	return s.negations[token] || strings.HasSuffix(token, "n't")
}

func splitClauses(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';', ':', ',', '\n':
			return true
		}
		return false
	})
}

func tokenize(clause string) []string {
	clause = strings.ToLower(strings.ReplaceAll(clause, "’", "'"))
	fields := strings.FieldsFunc(clause, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func defaultNegations() map[string]bool {
	return map[string]bool{
		"not": true, "no": true, "never": true, "none": true, "nothing": true,
		"neither": true, "nor": true, "without": true, "hardly": true, "cannot": true,
	}
}

func defaultIntensifiers() map[string]float64 {
	return map[string]float64{
		"very":          1.3,
		"really":        1.3,
		"highly":        1.3,
		"extremely":     1.5,
		"incredibly":    1.5,
		"exceptionally": 1.5,
		"hugely":        1.4,
		"deeply":        1.3,
		"sharply":       1.3,
		"most":          1.2,
		"slightly":      0.5,
		"somewhat":      0.7,
		"mildly":        0.6,
		"marginally":    0.5,
		"barely":        0.4,
	}
}

func defaultPolarityWords() map[string]float64 {
	words := make(map[string]float64, 200)
	add := func(polarity float64, list ...string) {
		for _, w := range list {
			words[w] = polarity
		}
	}

	// Positive
	add(1.0, "excellent", "perfect", "outstanding", "best", "exceptional")
	add(0.8, "great", "amazing", "impressive", "wonderful", "fantastic", "thrilled", "boom", "booming")
	add(0.7, "good", "soar", "soars", "soared", "soaring", "skyrocket", "skyrockets", "skyrocketed", "win", "wins", "success", "successful")
	add(0.6, "surge", "surges", "surged", "surging", "jump", "jumps", "jumped", "optimism", "optimistic", "bullish", "breakthrough", "upbeat")
	add(0.5, "rally", "rallies", "rallied", "rallying", "gain", "gains", "gained", "strong", "stronger", "strongest", "strength", "profit", "profits", "profitable", "record", "confident", "confidence")
	add(0.4, "rise", "rises", "rose", "rising", "climb", "climbs", "climbed", "climbing", "recover", "recovers", "recovered", "recovery", "rebound", "rebounds", "rebounded", "approve", "approves", "approved", "approval", "growth", "growing", "upgrade", "upgraded", "support", "supports", "adoption", "positive", "favorable", "favourable", "benefit", "benefits")
	add(0.3, "up", "higher", "increase", "increases", "increased", "improve", "improves", "improved", "improvement", "boost", "boosts", "boosted", "welcome", "welcomes", "launch", "launches", "launched", "partnership", "opportunity", "opportunities", "stable", "steady", "safe")
	add(0.2, "new", "innovative", "popular", "easing")

	// Negative
	add(-1.0, "worst", "catastrophic", "disaster", "disastrous", "devastating", "collapse", "collapsed", "collapses")
	add(-0.8, "terrible", "awful", "fraud", "fraudulent", "scam", "scams", "panic", "bankrupt", "bankruptcy", "insolvent", "insolvency", "hacked", "stolen", "theft")
	add(-0.7, "bad", "crash", "crashes", "crashed", "crashing", "plummet", "plummets", "plummeted", "plummeting", "nosedive", "nosedived", "tumble", "tumbles", "tumbled", "fail", "fails", "failed", "failure", "exploit", "exploited")
	add(-0.6, "plunge", "plunges", "plunged", "plunging", "slump", "slumps", "slumped", "sink", "sinks", "sank", "bearish", "fear", "fears", "crisis", "hack", "loss", "losses", "lose", "loses", "lost", "weak", "weaker", "weakest", "pessimism", "pessimistic", "selloff")
	add(-0.5, "drop", "drops", "dropped", "dropping", "fall", "falls", "fell", "falling", "decline", "declines", "declined", "declining", "reject", "rejects", "rejected", "rejection", "ban", "bans", "banned", "lawsuit", "sued", "sue", "sues", "charged", "indicted", "indictment", "warning", "warns", "warned", "risk", "risky", "negative", "concern", "concerns", "worried", "worry", "worries", "uncertainty", "uncertain", "volatile", "delay", "delayed")
	add(-0.4, "down", "lower", "decrease", "decreases", "decreased", "slide", "slides", "slid", "dip", "dips", "dipped", "crackdown", "clampdown", "halt", "halted", "suspend", "suspended", "freeze", "frozen", "outflows", "liquidated", "liquidations", "inflation", "recession", "struggle", "struggles", "struggling")
	add(-0.3, "investigation", "probe", "scrutiny", "sanctions", "penalty", "fined", "downgrade", "downgraded", "correction", "problem", "problems", "issue", "issues")

	return words
}
