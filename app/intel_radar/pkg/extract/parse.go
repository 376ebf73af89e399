package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/sentiment"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// maxScanBytes bounds the permissive brace scan.
const maxScanBytes = 1 << 20

var errNoObject = errors.New("no JSON object found")

// ChunkOutput is what one chunk contributes.
type ChunkOutput struct {
	Entities []model.Entity
	Events   []model.Event
}

// ParseResult is the tagged outcome of parsing one synthesis response.
type ParseResult struct {
	OK        bool
	Value     ChunkOutput
	Err       error
	Recovered bool // parsed from an embedded object rather than the whole text
}

type wireEntity struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	MentionCount int    `json:"mention_count"`
	Mentions     int    `json:"mentionCount"`
	Sentiment    string `json:"sentiment"`
}

type wireEvent struct {
	Type         string `json:"type"`
	Entity       string `json:"entity"`
	Description  string `json:"description"`
	Timestamp    string `json:"timestamp"`
	Significance string `json:"significance"`
	SourceID     string `json:"source_id"`
	SourceIDAlt  string `json:"sourceId"`
}

type wirePayload struct {
	Entities []wireEntity `json:"entities"`
	Events   []wireEvent  `json:"events"`
}

// Parse tries a strict decode, then the largest balanced {...} span.
func Parse(text string) ParseResult {
	var p wirePayload
	strictErr := json.Unmarshal([]byte(stripFences(text)), &p)
	if strictErr == nil {
		return ParseResult{OK: true, Value: p.normalize()}
	}

	for _, span := range objectSpans(text) {
		var rp wirePayload
		if err := json.Unmarshal([]byte(span), &rp); err == nil {
			return ParseResult{OK: true, Value: rp.normalize(), Recovered: true}
		}
	}
	return ParseResult{Err: fmt.Errorf("strict parse: %v; %w", strictErr, errNoObject)}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// objectSpans returns every balanced top-level {...} span in text, longest
// first. Braces inside string literals are ignored.
func objectSpans(text string) []string {
	if len(text) > maxScanBytes {
		text = text[:maxScanBytes]
	}

	var spans []string
	depth, start := 0, -1
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, text[start:i+1])
			}
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return len(spans[i]) > len(spans[j]) })
	return spans
}

func (p wirePayload) normalize() ChunkOutput {
	var out ChunkOutput
	for _, e := range p.Entities {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		count := e.MentionCount
		if count == 0 {
			count = e.Mentions
		}
		if count < 1 {
			count = 1
		}
		sent, _ := sentiment.Normalize(e.Sentiment)
		out.Entities = append(out.Entities, model.Entity{
			Name:         name,
			Type:         entityType(e.Type),
			MentionCount: count,
			Sentiment:    sent,
		})
	}
	for _, ev := range p.Events {
		desc := strings.TrimSpace(ev.Description)
		if desc == "" {
			continue
		}
		src := ev.SourceID
		if src == "" {
			src = ev.SourceIDAlt
		}
		out.Events = append(out.Events, model.Event{
			Type:         strings.ToLower(strings.TrimSpace(ev.Type)),
			Entity:       strings.TrimSpace(ev.Entity),
			Description:  desc,
			Timestamp:    textutil.ParseTime(ev.Timestamp),
			Significance: significance(ev.Significance),
			SourceID:     strings.TrimSpace(src),
		})
	}
	return out
}

func entityType(s string) model.EntityType {
	switch t := model.EntityType(strings.ToLower(strings.TrimSpace(s))); t {
	case model.EntityCompany, model.EntityPerson, model.EntityRegulator, model.EntityProduct, model.EntityLocation:
		return t
	case "organization", "org", "competitor":
		return model.EntityCompany
	case "agency", "government":
		return model.EntityRegulator
	}
	return model.EntityCompany
}

func significance(s string) model.Significance {
	switch v := model.Significance(strings.ToLower(strings.TrimSpace(s))); v {
	case model.SignificanceLow, model.SignificanceMedium, model.SignificanceHigh, model.SignificanceCritical:
		return v
	}
	return model.SignificanceMedium
}
