package pattern

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newDetector() *Detector {
	return NewDetector(config.DefaultPatterns(), func() time.Time { return now })
}

func acme() *model.OrganizationProfile {
	return &model.OrganizationProfile{
		Name:         "Acme",
		Competitors:  []model.Competitor{{Name: "Ford"}},
		Stakeholders: []model.Stakeholder{{Name: "NHTSA", Type: model.StakeholderRegulator}},
		Topics:       []string{"charging"},
	}
}

func negativeMentions(n int, age time.Duration) []model.SocialSignal {
	out := make([]model.SocialSignal, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.SocialSignal{
			ID:        fmt.Sprintf("m%d-%s", i, age),
			Platform:  "x",
			Content:   fmt.Sprintf("Acme support is terrible, ticket %d still open", i),
			Sentiment: model.SentimentNegative,
			Timestamp: now.Add(-age),
		})
	}
	return out
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 50, Confidence(0, 0, false))
	assert.Equal(t, 90, Confidence(2, 600, true))
	assert.Equal(t, 90, Confidence(4, 501, false))
	assert.Equal(t, 100, Confidence(5, 1000, true))
	assert.Equal(t, 60, Confidence(0, 500, true))
}

func TestTimeWindow(t *testing.T) {
	assert.Equal(t, "24-48 hours", TimeWindow(model.UrgencyImmediate))
	assert.Equal(t, "3-7 days", TimeWindow(model.UrgencyThisWeek))
	assert.Equal(t, "ongoing", TimeWindow(model.UrgencyMonitor))
}

func TestDetectEmptyInput(t *testing.T) {
	out := newDetector().Detect(Input{Profile: acme()})
	assert.NotNil(t, out.Opportunities)
	assert.NotNil(t, out.Alerts)
	assert.Empty(t, out.Opportunities)
	assert.Empty(t, out.Alerts)
}

func TestSentimentSpike(t *testing.T) {
	out := newDetector().Detect(Input{Profile: acme(), Social: negativeMentions(6, time.Hour)})

	require.Len(t, out.Alerts, 1)
	a := out.Alerts[0]
	assert.Equal(t, model.KindAlert, a.Kind)
	assert.Equal(t, SocialSentimentSpike, a.PatternMatched)
	assert.Equal(t, model.UrgencyImmediate, a.Urgency)
	assert.Equal(t, model.SeverityHigh, a.Severity)
	assert.Equal(t, "24-48 hours", a.TimeWindow)
	assert.Equal(t, a.TimeWindow, a.RecommendedAction.When)
	assert.Equal(t, "x", a.RecommendedAction.Where)
	assert.Len(t, a.TriggerEvidence, 6)
	assert.Empty(t, out.Opportunities)
}

func TestSentimentSpikeCriticalAtDoubleThreshold(t *testing.T) {
	out := newDetector().Detect(Input{Profile: acme(), Social: negativeMentions(10, time.Hour)})
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.SeverityCritical, out.Alerts[0].Severity)
}

func TestSentimentSpikeIgnoresOldAndDuplicateMentions(t *testing.T) {
	social := append(negativeMentions(4, time.Hour), negativeMentions(3, 48*time.Hour)...)
	out := newDetector().Detect(Input{Profile: acme(), Social: social})
	assert.Empty(t, out.Alerts)

	dup := negativeMentions(6, time.Hour)
	for i := range dup {
		dup[i].ID = "same"
	}
	out = newDetector().Detect(Input{Profile: acme(), Social: dup})
	assert.Empty(t, out.Alerts)
}

func TestCompetitorCrisis(t *testing.T) {
	in := Input{
		Profile: acme(),
		Events: []model.Event{{
			Type:         model.EventCrisis,
			Entity:       "Ford",
			Description:  "Ford recalls 40,000 trucks",
			Significance: model.SignificanceHigh,
			SourceID:     "d1",
		}},
		Documents: []model.EnrichedDocument{{
			ScoredDocument: model.ScoredDocument{Document: model.Document{
				ID:      "d1",
				URL:     "https://news.example.com/ford",
				Snippet: "Ford is recalling trucks over a brake defect.",
			}},
		}},
	}

	out := newDetector().Detect(in)
	require.Len(t, out.Opportunities, 1)
	o := out.Opportunities[0]
	assert.Equal(t, CompetitorCrisis, o.PatternMatched)
	assert.Equal(t, "Ford", o.Entity)
	assert.Equal(t, model.SeverityHigh, o.Severity)
	assert.Equal(t, model.UrgencyImmediate, o.Urgency)
	assert.Equal(t, "competitive", o.Category)
	assert.Equal(t, 70, o.Score)
	assert.Equal(t, []model.Evidence{
		{Kind: "event", Ref: "event:0"},
		{Kind: "document", Ref: "d1"},
	}, o.TriggerEvidence)
}

func TestCompetitorCrisisWithoutSeverityKeywords(t *testing.T) {
	in := Input{
		Profile: acme(),
		Events:  []model.Event{{Type: model.EventCrisis, Entity: "Ford", Description: "Ford delays its launch"}},
	}
	out := newDetector().Detect(in)
	require.Len(t, out.Opportunities, 1)
	assert.Equal(t, model.SeverityMedium, out.Opportunities[0].Severity)
	assert.Equal(t, model.UrgencyThisWeek, out.Opportunities[0].Urgency)
	assert.Equal(t, 50, out.Opportunities[0].Score)
}

func TestDuplicateSignalsKeepHighestScore(t *testing.T) {
	in := Input{
		Profile: acme(),
		Events: []model.Event{
			{Type: model.EventCrisis, Entity: "Ford", Description: "Ford recalls trucks"},
			{Type: model.EventCrisis, Entity: "Ford", Description: "Ford recalls trucks", SourceID: "d1"},
		},
		Documents: []model.EnrichedDocument{{
			ScoredDocument: model.ScoredDocument{Document: model.Document{
				ID:      "d1",
				URL:     "https://news.example.com/ford",
				Snippet: "Recall notice.",
			}},
		}},
	}
	out := newDetector().Detect(in)
	require.Len(t, out.Opportunities, 1)
	assert.Equal(t, 70, out.Opportunities[0].Score)
	assert.Equal(t, "event:1", out.Opportunities[0].TriggerEvidence[0].Ref)
}

func TestRegulatoryShift(t *testing.T) {
	in := Input{
		Profile: acme(),
		Events: []model.Event{{
			Type:         model.EventRegulatory,
			Entity:       "NHTSA",
			Description:  "NHTSA opens a review of driver assist systems",
			Significance: model.SignificanceLow,
		}},
	}
	out := newDetector().Detect(in)
	require.Len(t, out.Opportunities, 1)
	o := out.Opportunities[0]
	assert.Equal(t, RegulatoryShift, o.PatternMatched)
	assert.Equal(t, "NHTSA", o.Entity)
	assert.Equal(t, model.UrgencyMonitor, o.Urgency)
	assert.Equal(t, "ongoing", o.TimeWindow)
}

func TestOrderingByScoreThenUrgency(t *testing.T) {
	p := acme()
	p.OpportunityKeywords = []string{"prices"}
	in := Input{
		Profile: p,
		Events: []model.Event{
			{Type: model.EventMarket, Entity: "Rivian", Description: "Rivian cuts prices", Significance: model.SignificanceHigh},
			{Type: model.EventCrisis, Entity: "Ford", Description: "Ford recalls trucks"},
		},
		Social: []model.SocialSignal{{
			ID:         "s1",
			Content:    "Acme charging is everywhere now, recommend it",
			Author:     "bigvoice",
			Engagement: 20000,
			URL:        "https://social.example.com/s1",
		}},
	}
	out := newDetector().Detect(in)
	require.Len(t, out.Opportunities, 3)

	// influencer: two matches and a URL
	assert.Equal(t, InfluencerMention, out.Opportunities[0].PatternMatched)
	assert.Equal(t, 80, out.Opportunities[0].Score)
	// equal scores: immediate before this_week
	assert.Equal(t, CompetitorCrisis, out.Opportunities[1].PatternMatched)
	assert.Equal(t, MarketDisruption, out.Opportunities[2].PatternMatched)
	assert.Equal(t, "Rivian", out.Opportunities[2].Entity)
	assert.Equal(t, 60, out.Opportunities[1].Score)
	assert.Equal(t, 60, out.Opportunities[2].Score)
}

func TestTrendingHashtag(t *testing.T) {
	var social []model.SocialSignal
	for i := 0; i < 5; i++ {
		social = append(social, model.SocialSignal{
			ID:       fmt.Sprintf("h%d", i),
			Platform: "x",
			Content:  "Road trip went fine #EVLife",
		})
	}

	out := newDetector().Detect(Input{Profile: acme(), Social: social[:4]})
	assert.Empty(t, out.Opportunities)

	out = newDetector().Detect(Input{Profile: acme(), Social: social})
	require.Len(t, out.Opportunities, 1)
	o := out.Opportunities[0]
	assert.Equal(t, TrendingHashtag, o.PatternMatched)
	assert.Equal(t, "#evlife", o.Entity)
	assert.Equal(t, model.UrgencyThisWeek, o.Urgency)
	assert.Equal(t, "3-7 days", o.TimeWindow)
}

func TestInfluencerThresholds(t *testing.T) {
	cases := []struct {
		name   string
		signal model.SocialSignal
		want   bool
	}{
		{"verified above 1000", model.SocialSignal{ID: "a", Author: "v", Verified: true, Engagement: 1500, Content: "Acme charging rocks"}, true},
		{"unverified at 1500", model.SocialSignal{ID: "b", Author: "u", Engagement: 1500, Content: "Acme charging rocks"}, false},
		{"unverified above 10000", model.SocialSignal{ID: "c", Author: "u", Engagement: 20000, Content: "Acme charging rocks"}, true},
		{"off topic", model.SocialSignal{ID: "d", Author: "u", Engagement: 20000, Content: "Nice weather today"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := newDetector().Detect(Input{Profile: acme(), Social: []model.SocialSignal{tc.signal}})
			if !tc.want {
				assert.Empty(t, out.Opportunities)
				return
			}
			require.Len(t, out.Opportunities, 1)
			assert.Equal(t, InfluencerMention, out.Opportunities[0].PatternMatched)
			assert.Equal(t, tc.signal.Author, out.Opportunities[0].Entity)
		})
	}
}

func TestVolumeSpike(t *testing.T) {
	out := newDetector().Detect(Input{Profile: acme(), DocumentCount: 10})
	assert.Empty(t, out.Alerts)

	out = newDetector().Detect(Input{Profile: acme(), DocumentCount: 11})
	require.Len(t, out.Alerts, 1)
	a := out.Alerts[0]
	assert.Equal(t, VolumeSpike, a.PatternMatched)
	assert.Equal(t, model.SeverityHigh, a.Severity)
	assert.Equal(t, 50, a.Score)
}

func TestSignalsFromDocuments(t *testing.T) {
	docs := []model.Document{
		{ID: "d1", Snippet: "plain news"},
		{ID: "d2", Snippet: "Acme is great", Social: &model.SocialMeta{MentionID: "m2", Platform: "x", Engagement: 3}},
		{ID: "d3", Snippet: "Acme is late", Social: &model.SocialMeta{Platform: "reddit", Sentiment: model.SentimentNegative}},
	}
	got := SignalsFromDocuments(docs)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "Acme is great", got[0].Content)
	assert.Equal(t, 3, got[0].Engagement)
	assert.Equal(t, "d3", got[1].ID)
	assert.Equal(t, model.SentimentNegative, got[1].Sentiment)
}
