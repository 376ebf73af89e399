// Package sentiment classifies text with a word lexicon when a source carries no sentiment of its own.
package sentiment

import (
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// Lexicon holds the negative and positive word lists.
type Lexicon struct {
	Negative []string
	Positive []string
}

// FromScoring returns the lexicon configured in cfg.
func FromScoring(cfg config.ScoringConfig) Lexicon {
	return Lexicon{Negative: cfg.NegativeTerms, Positive: cfg.PositiveTerms}
}

// Classify returns the sentiment with more word-bounded hits; ties are neutral.
func (l Lexicon) Classify(text string) model.Sentiment {
	neg := len(textutil.MatchedTerms(text, l.Negative))
	pos := len(textutil.MatchedTerms(text, l.Positive))
	switch {
	case neg > pos:
		return model.SentimentNegative
	case pos > neg:
		return model.SentimentPositive
	}
	return model.SentimentNeutral
}

// Normalize maps free-form labels onto a Sentiment, reporting whether it was recognized.
func Normalize(s string) (model.Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "negative", "neg":
		return model.SentimentNegative, true
	case "positive", "pos":
		return model.SentimentPositive, true
	case "neutral", "mixed":
		return model.SentimentNeutral, true
	}
	return model.SentimentNeutral, false
}
