// Package coverage reports which tracked targets the extracted intelligence mentions.
package coverage

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// Analyze computes covered and gap lists for competitors, stakeholders and topics.
func Analyze(p *model.OrganizationProfile, entities []model.Entity, events []model.Event) model.CoverageReport {
	haystack := make([]string, 0, len(entities)+2*len(events))
	for _, e := range entities {
		haystack = append(haystack, e.Name)
	}
	for _, ev := range events {
		haystack = append(haystack, ev.Description, ev.Entity)
	}

	return model.CoverageReport{
		Competitors:  category("competitors", p.CompetitorNames(), haystack),
		Stakeholders: category("stakeholders", p.StakeholderNames(), haystack),
		Topics:       category("topics", p.TopicTargets(), haystack),
	}
}

func category(label string, targets, haystack []string) model.CoverageCategory {
	c := model.CoverageCategory{Covered: []string{}, Gaps: []string{}}
	seen := map[string]bool{}
	for _, t := range targets {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		if mentioned(t, haystack) {
			c.Covered = append(c.Covered, t)
		} else {
			c.Gaps = append(c.Gaps, t)
		}
	}
	c.ContextNote = note(label, c)
	return c
}

func mentioned(target string, haystack []string) bool {
	for _, h := range haystack {
		if textutil.ContainsFold(h, target) {
			return true
		}
	}
	return false
}

func note(label string, c model.CoverageCategory) string {
	total := len(c.Covered) + len(c.Gaps)
	switch {
	case total == 0:
		return fmt.Sprintf("No %s tracked.", label)
	case len(c.Gaps) == 0:
		return fmt.Sprintf("Covered %d/%d %s.", len(c.Covered), total, label)
	}
	return fmt.Sprintf("Covered %d/%d %s (gaps: %s).", len(c.Covered), total, label, strings.Join(c.Gaps, ", "))
}
