package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/models"
)

// Tier is an importance tier: any score >= Min qualifies
type Tier struct {
	Name string
	Min  int
}

// keyword is a weighted phrase with its precompiled whole-word pattern
type keyword struct {
	phrase  string
	weight  int
	pattern *regexp.Regexp
}

// asset is a tracked symbol and its alias, both matched as whole words
type asset struct {
	symbol      string // upper case
	alias       string
	symbolMatch *regexp.Regexp
	aliasMatch  *regexp.Regexp // nil when no alias is configured
}

// Lexicon is the immutable keyword, asset and tier data the analyzer scores against.
// Build one with NewLexicon; the zero value is not usable.
type Lexicon struct {
	keywords []keyword // sorted by phrase
	assets   []asset   // sorted by symbol
	tiers    []Tier    // sorted by Min, highest first
}

// NewLexicon validates and compiles the lexicon.
// Phrases and aliases are lower-cased, symbols upper-cased. There must be at least one tier
// and one of them must start at 0 so every score maps to a tier.
func NewLexicon(keywords map[string]int, assets map[string]string, tiers []Tier) (*Lexicon, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("lexicon has no importance tiers")
	}

	l := &Lexicon{}

	seenTiers := make(map[string]bool, len(tiers))
	hasZero := false
	for _, t := range tiers {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("importance tier has no name")
		}
		if t.Min < 0 {
			return nil, fmt.Errorf("importance tier %q has negative minimum %d", name, t.Min)
		}
		key := strings.ToLower(name)
		if seenTiers[key] {
			return nil, fmt.Errorf("importance tier %q defined twice", name)
		}
		seenTiers[key] = true
		if t.Min == 0 {
			hasZero = true
		}
		l.tiers = append(l.tiers, Tier{Name: name, Min: t.Min})
	}
	if !hasZero {
		return nil, fmt.Errorf("importance tiers need a tier with minimum 0 as fallback")
	}
	sort.SliceStable(l.tiers, func(i, j int) bool {
		return l.tiers[i].Min > l.tiers[j].Min
	})

	for phrase, weight := range keywords {
		p := normalizePhrase(phrase)
		if p == "" {
			return nil, fmt.Errorf("keyword phrase is empty")
		}
		if weight <= 0 {
			return nil, fmt.Errorf("keyword %q has non-positive weight %d", p, weight)
		}
		l.keywords = append(l.keywords, keyword{phrase: p, weight: weight, pattern: wordPattern(p)})
	}
	sort.Slice(l.keywords, func(i, j int) bool {
		return l.keywords[i].phrase < l.keywords[j].phrase
	})
	l.keywords = dedupeKeywords(l.keywords)

	for symbol, alias := range assets {
		s := normalizePhrase(symbol)
		if s == "" {
			return nil, fmt.Errorf("tracked asset symbol is empty")
		}
		a := asset{
			symbol:      strings.ToUpper(s),
			symbolMatch: wordPattern(s),
			alias:       normalizePhrase(alias),
		}
		if a.alias != "" {
			a.aliasMatch = wordPattern(a.alias)
		}
		l.assets = append(l.assets, a)
	}
	sort.Slice(l.assets, func(i, j int) bool {
		return l.assets[i].symbol < l.assets[j].symbol
	})

	return l, nil
}

// DefaultLexicon returns the built-in crypto/macro lexicon
func DefaultLexicon() *Lexicon {
	l, err := NewLexicon(DefaultKeywords(), DefaultAssets(), DefaultTiers())
	if err != nil {
		panic(fmt.Sprintf("default lexicon is invalid: %v", err))
	}
	return l
}

// LexiconFromConfig builds the lexicon from the defaults plus the [lexicon] config overrides
func LexiconFromConfig(cfg common.LexiconConfig) (*Lexicon, error) {
	keywords := DefaultKeywords()
	if cfg.ReplaceKeywords {
		keywords = map[string]int{}
	}
	for phrase, weight := range cfg.Keywords {
		keywords[normalizePhrase(phrase)] = weight
	}

	assets := DefaultAssets()
	if cfg.ReplaceAssets {
		assets = map[string]string{}
	}
	for symbol, alias := range cfg.Assets {
		assets[normalizePhrase(symbol)] = alias
	}

	tiers := DefaultTiers()
	if len(cfg.Tiers) > 0 {
		tiers = make([]Tier, 0, len(cfg.Tiers))
		for _, t := range cfg.Tiers {
			tiers = append(tiers, Tier{Name: t.Name, Min: t.Min})
		}
	}

	return NewLexicon(keywords, assets, tiers)
}

// Tiers returns the tiers ordered by minimum score, highest first
func (l *Lexicon) Tiers() []Tier {
	out := make([]Tier, len(l.tiers))
	copy(out, l.tiers)
	return out
}

// TierNames returns tier names ordered from least to most important
func (l *Lexicon) TierNames() []string {
	names := make([]string, len(l.tiers))
	for i, t := range l.tiers {
		names[len(l.tiers)-1-i] = t.Name
	}
	return names
}

// LowestTier is the tier used for empty text or a zero score
func (l *Lexicon) LowestTier() string {
	return l.tiers[len(l.tiers)-1].Name
}

// SelectTier returns the first tier, walking from the highest minimum down, whose minimum is <= score
func (l *Lexicon) SelectTier(score int) string {
	for _, t := range l.tiers {
		if t.Min <= score {
			return t.Name
		}
	}
	return l.LowestTier()
}

// KeywordCount returns the number of distinct keyword phrases
func (l *Lexicon) KeywordCount() int {
	return len(l.keywords)
}

// AssetCount returns the number of tracked assets
func (l *Lexicon) AssetCount() int {
	return len(l.assets)
}

// ScoreImportance sums the weights of every distinct phrase that occurs in text.
// A phrase counts once however often it appears. Overlapping phrases ("rate hike" and "hike")
// each count on their own.
func (l *Lexicon) ScoreImportance(text string) (tier string, score int, matched []string) {
	if text == "" {
		return l.LowestTier(), 0, nil
	}

	lower := strings.ToLower(text)
	for _, kw := range l.keywords {
		if kw.pattern.MatchString(lower) {
			score += kw.weight
			matched = append(matched, kw.phrase)
		}
	}

	return l.SelectTier(score), score, matched
}

// RelatedAssets returns the sorted symbols mentioned in text by symbol or alias,
// or [MARKET_WIDE] when none is.
func (l *Lexicon) RelatedAssets(text string) []string {
	if text == "" {
		return []string{models.MarketWide}
	}

	lower := strings.ToLower(text)
	var found []string
	for _, a := range l.assets {
		if n := len(found); n > 0 && found[n-1] == a.symbol {
			continue
		}
		if a.symbolMatch.MatchString(lower) || (a.aliasMatch != nil && a.aliasMatch.MatchString(lower)) {
			found = append(found, a.symbol)
		}
	}

	if len(found) == 0 {
		return []string{models.MarketWide}
	}
	// l.assets is sorted by symbol, so found already is
	return found
}

func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// wordPattern matches phrase only where it is bounded by non-word characters,
// so "fed" never matches inside "federal".
func wordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// dedupeKeywords keeps the highest weight for phrases that normalise to the same text
func dedupeKeywords(sorted []keyword) []keyword {
	out := sorted[:0]
	for _, kw := range sorted {
		if n := len(out); n > 0 && out[n-1].phrase == kw.phrase {
			if kw.weight > out[n-1].weight {
				out[n-1] = kw
			}
			continue
		}
		out = append(out, kw)
	}
	return out
}
