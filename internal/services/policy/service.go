package policy

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
)

// FallbackMinDisplay is used when the configured display threshold is not a defined tier
const FallbackMinDisplay = "Medium"

// Service decides display and sound for analysed articles
type Service struct {
	ranks      map[string]int
	tierNames  []string
	minDisplay string
	neutralMin string
	logger     arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DecisionPolicy = (*Service)(nil)

// NewService creates the decision policy.
// tierNames must be ordered from least to most important; rank is the index in that list.
// An unknown minDisplay falls back to "Medium" (or the second-lowest tier when "Medium" is not defined).
// An unknown neutralMin is kept: neutral articles are then never displayed.
func NewService(logger arbor.ILogger, tierNames []string, minDisplay string, neutralMin string) *Service {
	s := &Service{
		ranks:      make(map[string]int, len(tierNames)),
		tierNames:  append([]string(nil), tierNames...),
		neutralMin: neutralMin,
		logger:     logger,
	}
	for i, name := range tierNames {
		s.ranks[strings.ToLower(name)] = i
	}

	s.minDisplay = s.resolveMinDisplay(minDisplay)

	if s.Rank(neutralMin) < 0 {
		logger.Warn().
			Str("neutral_min_importance", neutralMin).
			Strs("tiers", tierNames).
			Msg("Neutral display threshold is not a defined tier - neutral articles will not be shown")
	}

	logger.Debug().
		Str("min_display", s.minDisplay).
		Str("neutral_min", neutralMin).
		Msg("Decision policy configured")

	return s
}

func (s *Service) resolveMinDisplay(minDisplay string) string {
	if rank := s.Rank(minDisplay); rank >= 0 {
		return s.tierNames[rank]
	}

	fallback := FallbackMinDisplay
	if s.Rank(fallback) < 0 {
		switch {
		case len(s.tierNames) > 1:
			fallback = s.tierNames[1]
		case len(s.tierNames) == 1:
			fallback = s.tierNames[0]
		default:
			fallback = ""
		}
	}

	s.logger.Warn().
		Str("min_importance", minDisplay).
		Str("fallback", fallback).
		Strs("valid", s.tierNames).
		Msg("Invalid minimum importance - using fallback")

	return fallback
}

// Rank returns the position of tier in the ordered tier list, or -1 when it is not defined.
// Comparison is case-insensitive.
func (s *Service) Rank(tier string) int {
	if rank, ok := s.ranks[strings.ToLower(tier)]; ok {
		return rank
	}
	return -1
}

// MinDisplay returns the effective minimum importance for display
func (s *Service) MinDisplay() string {
	return s.minDisplay
}

// NeutralMin returns the configured neutral display threshold
func (s *Service) NeutralMin() string {
	return s.neutralMin
}

// Decide applies the display rules and the first-run sound rule
func (s *Service) Decide(analysis models.Analysis, isFirstRun bool, soundAlreadyPlayed bool) models.Decision {
	if !s.shouldDisplay(analysis) {
		return models.Decision{}
	}

	sound := true
	if isFirstRun && soundAlreadyPlayed {
		sound = false
	}

	return models.Decision{Display: true, Sound: sound}
}

func (s *Service) shouldDisplay(analysis models.Analysis) bool {
	rank := s.Rank(analysis.Importance)
	minRank := s.Rank(s.minDisplay)
	if rank < 0 || minRank < 0 || rank < minRank {
		return false
	}

	switch analysis.Sentiment {
	case models.SentimentPositive, models.SentimentNegative:
		return true
	case models.SentimentNeutral:
		neutralRank := s.Rank(s.neutralMin)
		if neutralRank < 0 {
			return false
		}
		return rank >= neutralRank
	default:
		return false
	}
}
