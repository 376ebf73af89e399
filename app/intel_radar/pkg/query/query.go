// Package query turns an organization profile into a bounded list of source queries.
package query

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// Intent tags why a query exists.
type Intent string

const (
	IntentCrisis      Intent = "crisis"
	IntentCompetitor  Intent = "competitor"
	IntentStakeholder Intent = "stakeholder"
	IntentGeneral     Intent = "general"
)

const (
	DefaultCap              = 15
	DefaultCompetitorPairs  = 3
	DefaultStakeholderPairs = 2
	generalQuerySuffix      = "breaking news"
)

// Query is one search/feed query.
type Query struct {
	Text     string   `json:"text"`
	Terms    []string `json:"terms"` // all terms must appear for feed-side filtering
	Intent   Intent   `json:"intent"`
	Priority int      `json:"priority"`
}

// Builder builds queries; zero fields fall back to the defaults.
type Builder struct {
	Cap              int
	CompetitorPairs  int
	StakeholderPairs int
}

// Result is the ordered query list plus how many were dropped by the cap.
type Result struct {
	Queries []Query
	Dropped int
}

// Build returns crisis queries first, then competitor and stakeholder pairs,
// and always ends with the catch-all breaking-news query.
func (b Builder) Build(p *model.OrganizationProfile) Result {
	capN := b.Cap
	if capN <= 0 {
		capN = DefaultCap
	}
	compPairs := b.CompetitorPairs
	if compPairs <= 0 {
		compPairs = DefaultCompetitorPairs
	}
	stakePairs := b.StakeholderPairs
	if stakePairs <= 0 {
		stakePairs = DefaultStakeholderPairs
	}

	org := strings.TrimSpace(p.Name)
	var specific []Query

	for _, kw := range distinct(p.CrisisKeywords) {
		specific = append(specific, Query{
			Text:     fmt.Sprintf("%q %s", org, kw),
			Terms:    []string{org, kw},
			Intent:   IntentCrisis,
			Priority: 0,
		})
	}
	for _, c := range firstN(distinct(p.CompetitorNames()), compPairs) {
		specific = append(specific, Query{
			Text:     fmt.Sprintf("%q %q", org, c),
			Terms:    []string{org, c},
			Intent:   IntentCompetitor,
			Priority: 1,
		})
	}
	for _, s := range firstN(distinct(p.StakeholderNames()), stakePairs) {
		specific = append(specific, Query{
			Text:     fmt.Sprintf("%q %q", org, s),
			Terms:    []string{org, s},
			Intent:   IntentStakeholder,
			Priority: 2,
		})
	}

	general := Query{
		Text:     fmt.Sprintf("%q %s", org, generalQuerySuffix),
		Terms:    []string{org},
		Intent:   IntentGeneral,
		Priority: 3,
	}

	dropped := 0
	if room := capN - 1; len(specific) > room {
		if room < 0 {
			room = 0
		}
		dropped = len(specific) - room
		specific = specific[:room]
		logger.Log.WithFields(logrus.Fields{
			"stage":   string(model.StageQuery),
			"cap":     capN,
			"dropped": dropped,
		}).Warn("query cap reached, dropping lowest-priority queries")
	}

	return Result{Queries: append(specific, general), Dropped: dropped}
}

func distinct(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
