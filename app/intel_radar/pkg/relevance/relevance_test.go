package relevance

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

var now = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func testProfile() *model.OrganizationProfile {
	return &model.OrganizationProfile{
		Name:                "Acme",
		Aliases:             []string{"Acme Corp"},
		Competitors:         []model.Competitor{{Name: "Ford", Tier: model.TierDirect}, {Name: "GM", Tier: model.TierDirect}},
		CrisisKeywords:      []string{"recall", "lawsuit"},
		OpportunityKeywords: []string{"partnership"},
	}
}

func factorNames(sd model.ScoredDocument) []string {
	var out []string
	for _, f := range sd.ScoreFactors {
		out = append(out, f.Name)
	}
	return out
}

func TestGarbageFilterExamples(t *testing.T) {
	f, err := NewGarbageFilter(config.DefaultScoring())
	require.NoError(t, err)

	assert.NotEmpty(t, f.Reject(model.Document{Title: "2.", Snippet: strings.Repeat("x", 10)}))
	assert.Empty(t, f.Reject(model.Document{
		Title:   "Tesla unveils new Megapack facility in Nevada",
		Snippet: strings.Repeat("a", 200),
	}))
}

func TestGarbageFilterRules(t *testing.T) {
	f, err := NewGarbageFilter(config.DefaultScoring())
	require.NoError(t, err)
	body := strings.Repeat("Body text for an article. ", 4)

	cases := []struct {
		title  string
		body   string
		reason string
	}{
		{"Skip to content", body, "boilerplate title"},
		{"We use cookies on this site", body, "boilerplate title"},
		{"Subscribe to our newsletter", body, "boilerplate title"},
		{"![logo](https://cdn.example.com/logo.png)", body, "boilerplate title"},
		{"42)", body, "boilerplate title"},
		{"Acme recalls widgets", "too short", "body too short"},
		{"12 / 34 -- 5", body, "title has no words"},
		{"Acme Q3", body, ""},
		{"Ok", body, "title has no words"},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.reason, f.Reject(model.Document{Title: tc.title, Snippet: tc.body}))
		})
	}

	kept, rejected := f.Filter([]model.Document{
		{Title: "Menu", Snippet: body},
		{Title: "Acme opens plant in Ohio", Snippet: body},
	})
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, rejected)
}

func TestNewGarbageFilterBadPattern(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.BoilerplateTitle = []string{"("}
	_, err := NewGarbageFilter(cfg)
	assert.Error(t, err)
}

func TestScoreFactors(t *testing.T) {
	s := NewScorer(config.DefaultScoring(), func() time.Time { return now })
	p := testProfile()

	sd := s.Score(model.Document{
		Title:       "Acme announces recall",
		Snippet:     "Acme Corp says the Ford partnership is unaffected.",
		PublishedAt: now.Add(-time.Hour),
	}, 0, p)
	assert.Equal(t, 100, sd.RelevanceScore)
	assert.Equal(t, model.CategoryCrisis, sd.Category)
	assert.Equal(t, []string{
		FactorOrgTitle, FactorOrgBody, FactorCrisisKeyword, FactorOpportunityKeyword,
		FactorCompetitorBody, FactorRecent,
	}, factorNames(sd))

	sd = s.Score(model.Document{
		Title:   "Ford partnership expands to Europe",
		Snippet: "The carmaker signed a new deal.",
	}, 1, p)
	assert.Equal(t, 30+20+10, sd.RelevanceScore)
	assert.Equal(t, model.CategoryOpportunity, sd.Category)

	sd = s.Score(model.Document{
		Title:       "Market segment report",
		Snippet:     "A segment overview with no tracked names.",
		PublishedAt: now.Add(-72 * time.Hour),
	}, 2, p)
	assert.Zero(t, sd.RelevanceScore)
	assert.Equal(t, model.CategoryGeneral, sd.Category)
	assert.Empty(t, sd.ScoreFactors)
}

func TestScoreCategoryTieFavorsCrisis(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.OpportunityKeyword = cfg.CrisisKeyword
	s := NewScorer(cfg, func() time.Time { return now })

	sd := s.Score(model.Document{Title: "Acme lawsuit and partnership news"}, 0, testProfile())
	assert.Equal(t, model.CategoryCrisis, sd.Category)
}

func TestScoreBounded(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.OrgInTitle = 500
	cfg.CrisisKeyword = -900
	s := NewScorer(cfg, func() time.Time { return now })
	p := testProfile()

	for _, title := range []string{"Acme", "Acme recall", "recall", "nothing"} {
		sd := s.Score(model.Document{Title: title, Snippet: title}, 0, p)
		assert.GreaterOrEqual(t, sd.RelevanceScore, 0)
		assert.LessOrEqual(t, sd.RelevanceScore, 100)
	}
}

func TestRankOrdersAndTruncates(t *testing.T) {
	s := NewScorer(config.DefaultScoring(), func() time.Time { return now })
	p := testProfile()

	var docs []model.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, model.Document{Title: fmt.Sprintf("Unrelated story %d", i), PublishedAt: now.Add(-72 * time.Hour)})
	}
	docs = append(docs, model.Document{Title: "Acme recall widens", PublishedAt: now})

	ranked := s.Rank(docs, p, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, 5, ranked[0].DiscoveryIndex)
	assert.Equal(t, 0, ranked[1].DiscoveryIndex)
	assert.Equal(t, 1, ranked[2].DiscoveryIndex)
}
