// Package relevance scores deduplicated documents against an organization profile.
package relevance

import (
	"sort"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

const DefaultTopK = 60

// Score factor names.
const (
	FactorOrgTitle           = "org_in_title"
	FactorOrgBody            = "org_in_body"
	FactorCrisisKeyword      = "crisis_keyword"
	FactorOpportunityKeyword = "opportunity_keyword"
	FactorCompetitorTitle    = "competitor_in_title"
	FactorCompetitorBody     = "competitor_in_body"
	FactorRecent             = "recent"
	FactorNoTimestamp        = "no_timestamp"
)

// Scorer computes additive relevance scores. It is a pure function of its
// inputs and the clock.
type Scorer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

// NewScorer returns a scorer for cfg; now defaults to time.Now.
func NewScorer(cfg config.ScoringConfig, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{cfg: cfg, now: now}
}

// Score computes the score of d. index is its discovery position.
func (s *Scorer) Score(d model.Document, index int, p *model.OrganizationProfile) model.ScoredDocument {
	var factors []model.ScoreFactor
	add := func(name string, pts int) {
		if pts != 0 {
			factors = append(factors, model.ScoreFactor{Name: name, Points: pts})
		}
	}

	orgs := p.OrganizationNames()
	if textutil.AnyTerm(d.Title, orgs) != "" {
		add(FactorOrgTitle, s.cfg.OrgInTitle)
	}
	if textutil.AnyTerm(d.Snippet, orgs) != "" {
		add(FactorOrgBody, s.cfg.OrgInBody)
	}

	text := d.Title + "\n" + d.Snippet
	crisis, opportunity := 0, 0
	if textutil.AnyTerm(text, p.CrisisKeywords) != "" {
		crisis = s.cfg.CrisisKeyword
		add(FactorCrisisKeyword, crisis)
	}
	if textutil.AnyTerm(text, p.OpportunityKeywords) != "" {
		opportunity = s.cfg.OpportunityKeyword
		add(FactorOpportunityKeyword, opportunity)
	}

	competitors := p.CompetitorNames()
	switch {
	case textutil.AnyTerm(d.Title, competitors) != "":
		add(FactorCompetitorTitle, s.cfg.CompetitorInTitle)
	case textutil.AnyTerm(d.Snippet, competitors) != "":
		add(FactorCompetitorBody, s.cfg.CompetitorInBody)
	}

	if d.HasTimestamp() {
		window := time.Duration(s.cfg.RecentWindowHours) * time.Hour
		if age := s.now().Sub(d.PublishedAt); age <= window && age >= -window {
			add(FactorRecent, s.cfg.RecentBonus)
		}
	} else {
		add(FactorNoTimestamp, s.cfg.NeutralRecency)
	}

	total := 0
	for _, f := range factors {
		total += f.Points
	}

	category := model.CategoryGeneral
	switch {
	case crisis == 0 && opportunity == 0:
	case crisis >= opportunity:
		category = model.CategoryCrisis
	default:
		category = model.CategoryOpportunity
	}

	return model.ScoredDocument{
		Document:       d,
		RelevanceScore: clamp(total, 0, s.cfg.MaxScore),
		ScoreFactors:   factors,
		Category:       category,
		DiscoveryIndex: index,
	}
}

// Rank scores docs, sorts by score then discovery order and keeps topK.
func (s *Scorer) Rank(docs []model.Document, p *model.OrganizationProfile, topK int) []model.ScoredDocument {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]model.ScoredDocument, len(docs))
	for i, d := range docs {
		scored[i] = s.Score(d, i, p)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].DiscoveryIndex < scored[j].DiscoveryIndex
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func clamp(v, lo, hi int) int {
	if hi <= 0 {
		hi = 100
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
