package model

import "time"

// EntityType classifies an extracted entity.
type EntityType string

const (
	EntityCompany   EntityType = "company"
	EntityPerson    EntityType = "person"
	EntityRegulator EntityType = "regulator"
	EntityProduct   EntityType = "product"
	EntityLocation  EntityType = "location"
)

// Entity is aggregated across all chunks of a run; names merge case-insensitively.
type Entity struct {
	Name         string     `json:"name"`
	Type         EntityType `json:"type"`
	MentionCount int        `json:"mention_count"`
	Sentiment    Sentiment  `json:"sentiment"`
}

// Significance of an event.
type Significance string

const (
	SignificanceLow      Significance = "low"
	SignificanceMedium   Significance = "medium"
	SignificanceHigh     Significance = "high"
	SignificanceCritical Significance = "critical"
)

// Event types the detectors look at. Others pass through untouched.
const (
	EventCrisis     = "crisis"
	EventProduct    = "product"
	EventRegulatory = "regulatory"
	EventMarket     = "market"
	EventWorkforce  = "workforce"
)

// Event is a dated happening attributed to an entity.
type Event struct {
	Type         string       `json:"type"`
	Entity       string       `json:"entity"`
	Description  string       `json:"description"`
	Timestamp    time.Time    `json:"timestamp,omitempty"`
	Significance Significance `json:"significance"`
	SourceID     string       `json:"source_id,omitempty"`
}

// CoverageCategory holds covered and missing targets of one category.
type CoverageCategory struct {
	Covered     []string `json:"covered"`
	Gaps        []string `json:"gaps"`
	ContextNote string   `json:"context_note"`
}

// CoverageReport compares extracted entities and events with the profile's targets.
type CoverageReport struct {
	Competitors  CoverageCategory `json:"competitors"`
	Stakeholders CoverageCategory `json:"stakeholders"`
	Topics       CoverageCategory `json:"topics"`
}

// SocialSignal is a social mention fed to the pattern detector.
type SocialSignal struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Verified   bool      `json:"verified,omitempty"`
	Engagement int       `json:"engagement"`
	Sentiment  Sentiment `json:"sentiment"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// SignalKind separates opportunities from alerts.
type SignalKind string

const (
	KindOpportunity SignalKind = "opportunity"
	KindAlert       SignalKind = "alert"
)

// Urgency of a detected signal.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyThisWeek  Urgency = "this_week"
	UrgencyMonitor   Urgency = "monitor"
)

// Rank orders urgencies, lower is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyImmediate:
		return 0
	case UrgencyThisWeek:
		return 1
	default:
		return 2
	}
}

// Severity of an alert or crisis-driven opportunity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Evidence points at the event, document or social mention that triggered a signal.
type Evidence struct {
	Kind string `json:"kind"` // event | document | social | aggregate
	Ref  string `json:"ref"`
}

// RecommendedAction says who should do what, when and where.
type RecommendedAction struct {
	Who   string `json:"who"`
	What  string `json:"what"`
	When  string `json:"when"`
	Where string `json:"where"`
}

// Signal is an opportunity or alert produced by the pattern detector.
type Signal struct {
	Kind              SignalKind        `json:"kind"`
	Title             string            `json:"title"`
	PatternMatched    string            `json:"pattern_matched"`
	Entity            string            `json:"entity"`
	Score             int               `json:"score"`
	Urgency           Urgency           `json:"urgency"`
	Severity          Severity          `json:"severity,omitempty"`
	TimeWindow        string            `json:"time_window"`
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	TriggerEvidence   []Evidence        `json:"trigger_evidence"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
}
