package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

func TestAnalyzeFordGM(t *testing.T) {
	p := &model.OrganizationProfile{
		Name:        "Acme",
		Competitors: []model.Competitor{{Name: "Ford"}, {Name: "GM"}},
	}
	events := []model.Event{{Type: model.EventCrisis, Entity: "Ford", Description: "Recall of 40,000 trucks"}}

	r := Analyze(p, nil, events)
	assert.Equal(t, []string{"Ford"}, r.Competitors.Covered)
	assert.Equal(t, []string{"GM"}, r.Competitors.Gaps)
	assert.Equal(t, "Covered 1/2 competitors (gaps: GM).", r.Competitors.ContextNote)
}

func TestAnalyzeMatchesSubstringsCaseInsensitively(t *testing.T) {
	p := &model.OrganizationProfile{
		Name:         "Acme",
		Stakeholders: []model.Stakeholder{{Name: "SEC", Type: model.StakeholderRegulator}, {Name: "BlackRock", Type: model.StakeholderInvestor}},
		Topics:       []string{"solid-state batteries", "charging"},
	}
	entities := []model.Entity{{Name: "U.S. SEC"}}
	events := []model.Event{{Description: "Acme expands charging network in Texas"}}

	r := Analyze(p, entities, events)
	assert.Equal(t, []string{"SEC"}, r.Stakeholders.Covered)
	assert.Equal(t, []string{"BlackRock"}, r.Stakeholders.Gaps)
	assert.Equal(t, []string{"charging"}, r.Topics.Covered)
	assert.Equal(t, []string{"solid-state batteries"}, r.Topics.Gaps)
}

func TestAnalyzeEmptyTargets(t *testing.T) {
	r := Analyze(&model.OrganizationProfile{Name: "Acme"}, []model.Entity{{Name: "Ford"}}, nil)
	assert.Empty(t, r.Competitors.Covered)
	assert.Empty(t, r.Competitors.Gaps)
	assert.Equal(t, "No competitors tracked.", r.Competitors.ContextNote)
	assert.Equal(t, "No topics tracked.", r.Topics.ContextNote)
}

func TestAnalyzeFullCoverage(t *testing.T) {
	p := &model.OrganizationProfile{Name: "Acme", Competitors: []model.Competitor{{Name: "Ford"}}}
	r := Analyze(p, []model.Entity{{Name: "ford motor"}}, nil)
	assert.Equal(t, "Covered 1/1 competitors.", r.Competitors.ContextNote)
}
