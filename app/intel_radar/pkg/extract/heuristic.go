package extract

import (
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/sentiment"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

var (
	regulatoryTerms = []string{"regulator", "regulation", "regulatory", "antitrust", "probe", "fine", "fined", "ruling", "sanction", "compliance"}
	productTerms    = []string{"launch", "launches", "unveil", "unveils", "release", "releases", "new product", "rollout"}
	marketTerms     = []string{"acquisition", "acquire", "acquires", "merger", "market share", "ipo", "funding", "partnership", "expansion", "price cut"}
	workforceTerms  = []string{"layoff", "layoffs", "job cuts", "hiring", "strike", "union", "walkout", "resigns", "ceo"}
)

type tracked struct {
	name string
	typ  model.EntityType
}

// Heuristic extracts entities by counting tracked names and events by
// keyword family, one event per document at most. It never calls out.
type Heuristic struct {
	profile  *model.OrganizationProfile
	lexicon  sentiment.Lexicon
	critical []string
	high     []string
	crisis   []string
	market   []string
	targets  []tracked
}

// NewHeuristic prepares a heuristic extractor for p.
func NewHeuristic(p *model.OrganizationProfile, scoring config.ScoringConfig, patterns config.PatternConfig) *Heuristic {
	h := &Heuristic{
		profile:  p,
		lexicon:  sentiment.FromScoring(scoring),
		critical: patterns.CriticalKeywords,
		high:     patterns.HighKeywords,
	}
	h.crisis = append(h.crisis, p.CrisisKeywords...)
	h.crisis = append(h.crisis, h.critical...)
	h.crisis = append(h.crisis, h.high...)
	h.market = append(h.market, p.OpportunityKeywords...)
	h.market = append(h.market, marketTerms...)
	// Competitors first so events about them are attributed to them.
	for _, c := range p.Competitors {
		h.targets = append(h.targets, tracked{c.Name, model.EntityCompany})
	}
	for _, s := range p.Stakeholders {
		typ := model.EntityCompany
		switch s.Type {
		case model.StakeholderRegulator:
			typ = model.EntityRegulator
		case model.StakeholderExecutive:
			typ = model.EntityPerson
		}
		h.targets = append(h.targets, tracked{s.Name, typ})
	}
	for _, n := range p.OrganizationNames() {
		h.targets = append(h.targets, tracked{n, model.EntityCompany})
	}
	return h
}

// Extract runs over the documents of one chunk.
func (h *Heuristic) Extract(docs []model.EnrichedDocument) ChunkOutput {
	var out ChunkOutput

	for _, t := range h.targets {
		count := 0
		votes := map[model.Sentiment]int{}
		for _, d := range docs {
			n := textutil.CountTerm(d.Title+"\n"+d.Text(), t.name)
			if n == 0 {
				continue
			}
			count += n
			votes[h.docSentiment(d)] += n
		}
		if count == 0 {
			continue
		}
		out.Entities = append(out.Entities, model.Entity{
			Name:         t.name,
			Type:         t.typ,
			MentionCount: count,
			Sentiment:    majority(votes),
		})
	}

	for _, d := range docs {
		if ev, ok := h.event(d); ok {
			out.Events = append(out.Events, ev)
		}
	}
	return out
}

func (h *Heuristic) docSentiment(d model.EnrichedDocument) model.Sentiment {
	if d.Social != nil && d.Social.Sentiment != "" {
		return d.Social.Sentiment
	}
	return h.lexicon.Classify(d.Title + " " + d.Text())
}

func (h *Heuristic) event(d model.EnrichedDocument) (model.Event, bool) {
	text := d.Title + "\n" + d.Text()

	var typ string
	switch {
	case textutil.AnyTerm(text, h.crisis) != "":
		typ = model.EventCrisis
	case textutil.AnyTerm(text, regulatoryTerms) != "" || h.mentionsRegulator(text):
		typ = model.EventRegulatory
	case textutil.AnyTerm(text, productTerms) != "":
		typ = model.EventProduct
	case textutil.AnyTerm(text, h.market) != "":
		typ = model.EventMarket
	case textutil.AnyTerm(text, workforceTerms) != "":
		typ = model.EventWorkforce
	default:
		return model.Event{}, false
	}

	entity := h.entityFor(d.Title)
	if entity == "" {
		entity = h.entityFor(text)
	}

	sig := model.SignificanceMedium
	switch {
	case textutil.AnyTerm(text, h.critical) != "":
		sig = model.SignificanceCritical
	case textutil.AnyTerm(text, h.high) != "":
		sig = model.SignificanceHigh
	case typ == model.EventWorkforce || typ == model.EventProduct:
		sig = model.SignificanceLow
	}

	desc := strings.TrimSpace(d.Title)
	if desc == "" {
		desc = textutil.Truncate(d.Text(), 200)
	}
	return model.Event{
		Type:         typ,
		Entity:       entity,
		Description:  desc,
		Timestamp:    d.PublishedAt,
		Significance: sig,
		SourceID:     d.ID,
	}, true
}

func (h *Heuristic) entityFor(text string) string {
	for _, t := range h.targets {
		if textutil.ContainsTerm(text, t.name) {
			return t.name
		}
	}
	return ""
}

func (h *Heuristic) mentionsRegulator(text string) bool {
	for _, s := range h.profile.Stakeholders {
		if s.Type == model.StakeholderRegulator && textutil.ContainsTerm(text, s.Name) {
			return true
		}
	}
	return false
}
