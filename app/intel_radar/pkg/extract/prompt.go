package extract

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const promptTemplate = `You are an intelligence analyst for %s (industry: %s).
Read the documents below and extract structured intelligence.

Tracked competitors: %s
Tracked stakeholders: %s
Tracked topics: %s

Return ONLY a JSON object with this shape:
{
  "entities": [{"name": "...", "type": "company|person|regulator|product|location", "mention_count": 1, "sentiment": "positive|neutral|negative"}],
  "events": [{"type": "crisis|product|regulatory|market|workforce", "entity": "...", "description": "...", "timestamp": "RFC3339 or empty", "significance": "low|medium|high|critical", "source_id": "id from the [doc ...] header"}]
}
Count mentions per entity within these documents only. Every event must name the document it came from.

Documents:
%s`

// BuildPrompt renders the extraction prompt for one chunk.
func BuildPrompt(p *model.OrganizationProfile, chunk model.Chunk) string {
	industry := p.Industry
	if industry == "" {
		industry = "unspecified"
	}
	return fmt.Sprintf(promptTemplate,
		p.Name, industry,
		list(p.CompetitorNames()),
		list(p.StakeholderNames()),
		list(p.TopicTargets()),
		chunk.Text,
	)
}

func list(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
