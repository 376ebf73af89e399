package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

func TestBuilder_Build_Ordering(t *testing.T) {
	p := &model.OrganizationProfile{
		Name:           "Acme",
		CrisisKeywords: []string{"recall", "lawsuit", "Recall"},
		Competitors: []model.Competitor{
			{Name: "Ford"}, {Name: "GM"}, {Name: "Rivian"}, {Name: "Lucid"},
		},
		Stakeholders: []model.Stakeholder{
			{Name: "NHTSA"}, {Name: "SEC"}, {Name: "EPA"},
		},
	}

	res := Builder{}.Build(p)
	require.Len(t, res.Queries, 8)
	assert.Zero(t, res.Dropped)

	intents := make([]Intent, 0, len(res.Queries))
	for _, q := range res.Queries {
		intents = append(intents, q.Intent)
	}
	assert.Equal(t, []Intent{
		IntentCrisis, IntentCrisis,
		IntentCompetitor, IntentCompetitor, IntentCompetitor,
		IntentStakeholder, IntentStakeholder,
		IntentGeneral,
	}, intents)
	assert.Equal(t, `"Acme" recall`, res.Queries[0].Text)
	assert.Equal(t, []string{"Acme", "Ford"}, res.Queries[2].Terms)
	assert.Equal(t, `"Acme" breaking news`, res.Queries[7].Text)
}

func TestBuilder_Build_EmptyListsStillYieldCatchAll(t *testing.T) {
	res := Builder{}.Build(&model.OrganizationProfile{Name: "Acme"})
	require.Len(t, res.Queries, 1)
	assert.Equal(t, IntentGeneral, res.Queries[0].Intent)
}

func TestBuilder_Build_CapDropsExcessButKeepsCatchAll(t *testing.T) {
	var kws []string
	for i := 0; i < 20; i++ {
		kws = append(kws, fmt.Sprintf("kw%d", i))
	}
	p := &model.OrganizationProfile{
		Name:           "Acme",
		CrisisKeywords: kws,
		Competitors:    []model.Competitor{{Name: "Ford"}},
	}

	res := Builder{Cap: 15}.Build(p)
	require.Len(t, res.Queries, 15)
	assert.Equal(t, 7, res.Dropped)
	assert.Equal(t, IntentGeneral, res.Queries[14].Intent)
	assert.Equal(t, IntentCrisis, res.Queries[13].Intent)
}
