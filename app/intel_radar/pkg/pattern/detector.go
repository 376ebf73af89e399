// Package pattern runs the rule library over a run's events and social
// signals and emits ranked, deduplicated opportunities and alerts.
package pattern

import (
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// Pattern names.
const (
	CompetitorCrisis     = "competitor-crisis"
	RegulatoryShift      = "regulatory-shift"
	MarketDisruption     = "market-disruption"
	SocialSentimentSpike = "social-sentiment-spike"
	TrendingHashtag      = "trending-hashtag"
	InfluencerMention    = "influencer-mention"
	VolumeSpike          = "volume-spike"
)

const (
	baseScore        = 50
	perKeyword       = 10
	maxKeywordBonus  = 30
	longContentBonus = 10
	longContentRunes = 500
	urlBonus         = 10
	maxConfidence    = 100
)

// TimeWindow maps an urgency to the recommended reaction window.
func TimeWindow(u model.Urgency) string {
	switch u {
	case model.UrgencyImmediate:
		return "24-48 hours"
	case model.UrgencyThisWeek:
		return "3-7 days"
	}
	return "ongoing"
}

// Confidence is base 50, +10 per keyword match up to +30, +10 for content
// over 500 characters and +10 when a source URL exists, capped at 100.
func Confidence(keywordMatches, contentRunes int, hasURL bool) int {
	score := baseScore
	score += min(keywordMatches*perKeyword, maxKeywordBonus)
	if contentRunes > longContentRunes {
		score += longContentBonus
	}
	if hasURL {
		score += urlBonus
	}
	return min(score, maxConfidence)
}

// Input is everything the detector looks at. DocumentCount is the number of
// deduplicated documents collected in the run.
type Input struct {
	Profile       *model.OrganizationProfile
	Events        []model.Event
	Entities      []model.Entity
	Documents     []model.EnrichedDocument
	Social        []model.SocialSignal
	DocumentCount int
}

// Output holds the ranked signals.
type Output struct {
	Opportunities []model.Signal
	Alerts        []model.Signal
}

// Detector evaluates every pattern independently per run.
type Detector struct {
	cfg config.PatternConfig
	now func() time.Time
}

// NewDetector returns a detector with cfg thresholds; now defaults to time.Now.
func NewDetector(cfg config.PatternConfig, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{cfg: cfg, now: now}
}

type candidate struct {
	signal model.Signal
	order  int
}

// Detect runs all patterns.
func (d *Detector) Detect(in Input) Output {
	r := &run{
		d:    d,
		in:   in,
		docs: make(map[string]model.EnrichedDocument, len(in.Documents)),
	}
	for _, doc := range in.Documents {
		r.docs[doc.ID] = doc
	}

	r.eventPatterns()
	r.sentimentSpike()
	r.trendingHashtags()
	r.influencers()
	r.volumeSpike()

	kept := d.dedup(r.candidates)
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].signal, kept[j].signal
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Urgency.Rank() != b.Urgency.Rank() {
			return a.Urgency.Rank() < b.Urgency.Rank()
		}
		return kept[i].order < kept[j].order
	})

	out := Output{Opportunities: []model.Signal{}, Alerts: []model.Signal{}}
	for _, c := range kept {
		if c.signal.Kind == model.KindAlert {
			out.Alerts = append(out.Alerts, c.signal)
		} else {
			out.Opportunities = append(out.Opportunities, c.signal)
		}
	}
	return out
}

// dedup keeps the highest-scoring candidate per (pattern, entity, description signature).
func (d *Detector) dedup(cands []candidate) []candidate {
	index := map[string]int{}
	var kept []candidate
	for _, c := range cands {
		key := d.key(c.signal)
		if i, ok := index[key]; ok {
			if c.signal.Score > kept[i].signal.Score {
				c.order = kept[i].order
				kept[i] = c
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, c)
	}
	return kept
}

func (d *Detector) key(s model.Signal) string {
	sig := textutil.Truncate(strings.ToLower(textutil.NormalizeSpace(s.Description)), d.cfg.DescriptionSignatureChars)
	return s.PatternMatched + "\x00" + strings.ToLower(s.Entity) + "\x00" + sig
}

type run struct {
	d          *Detector
	in         Input
	docs       map[string]model.EnrichedDocument
	candidates []candidate
}

func (r *run) emit(s model.Signal) {
	s.TimeWindow = TimeWindow(s.Urgency)
	s.RecommendedAction.When = s.TimeWindow
	if s.TriggerEvidence == nil {
		s.TriggerEvidence = []model.Evidence{}
	}
	r.candidates = append(r.candidates, candidate{signal: s, order: len(r.candidates)})
}
