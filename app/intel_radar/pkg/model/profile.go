package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned when the profile is missing or malformed.
var ErrInvalidProfile = errors.New("invalid organization profile")

// CompetitorTier classifies how directly a competitor competes.
type CompetitorTier string

const (
	TierDirect   CompetitorTier = "direct"
	TierIndirect CompetitorTier = "indirect"
	TierEmerging CompetitorTier = "emerging"
)

// StakeholderType classifies a tracked stakeholder.
type StakeholderType string

const (
	StakeholderRegulator StakeholderType = "regulator"
	StakeholderInvestor  StakeholderType = "investor"
	StakeholderExecutive StakeholderType = "executive"
)

// SourceType selects the adapter used for a source.
type SourceType string

const (
	SourceRSS        SourceType = "rss"
	SourceWebSearch  SourceType = "web_search"
	SourceNewsSearch SourceType = "news_search"
	SourceSocial     SourceType = "social"
)

// Valid reports whether the source type has an adapter.
func (t SourceType) Valid() bool {
	switch t {
	case SourceRSS, SourceWebSearch, SourceNewsSearch, SourceSocial:
		return true
	}
	return false
}

// Competitor is a tracked competitor.
type Competitor struct {
	Name string         `json:"name" yaml:"name"`
	Tier CompetitorTier `json:"tier,omitempty" yaml:"tier"`
}

// Stakeholder is a tracked regulator, investor or executive.
type Stakeholder struct {
	Name string          `json:"name" yaml:"name"`
	Type StakeholderType `json:"type,omitempty" yaml:"type"`
}

// Source is a source declared in the profile.
type Source struct {
	Name     string     `json:"name" yaml:"name"`
	Endpoint string     `json:"endpoint" yaml:"endpoint"`
	Type     SourceType `json:"type" yaml:"type"`
	Priority int        `json:"priority,omitempty" yaml:"priority"` // 1 is the highest tier
}

// OrganizationProfile is supplied by the discovery service and never modified by the pipeline.
type OrganizationProfile struct {
	ID                  string        `json:"id,omitempty" yaml:"id"`
	Name                string        `json:"name" yaml:"name"`
	Aliases             []string      `json:"aliases,omitempty" yaml:"aliases"`
	Industry            string        `json:"industry,omitempty" yaml:"industry"`
	Competitors         []Competitor  `json:"competitors,omitempty" yaml:"competitors"`
	Stakeholders        []Stakeholder `json:"stakeholders,omitempty" yaml:"stakeholders"`
	Keywords            []string      `json:"keywords,omitempty" yaml:"keywords"`
	Topics              []string      `json:"topics,omitempty" yaml:"topics"`
	CrisisKeywords      []string      `json:"crisis_keywords,omitempty" yaml:"crisis_keywords"`
	OpportunityKeywords []string      `json:"opportunity_keywords,omitempty" yaml:"opportunity_keywords"`
	Sources             []Source      `json:"sources,omitempty" yaml:"sources"`
}

// Validate checks the fields the query builder and adapters depend on.
func (p *OrganizationProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	for i, c := range p.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: competitor #%d has no name", ErrInvalidProfile, i)
		}
	}
	for i, s := range p.Stakeholders {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: stakeholder #%d has no name", ErrInvalidProfile, i)
		}
	}
	for i, s := range p.Sources {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: source #%d has no name", ErrInvalidProfile, i)
		}
		if !s.Type.Valid() {
			return fmt.Errorf("%w: source %q has unsupported type %q", ErrInvalidProfile, s.Name, s.Type)
		}
	}
	return nil
}

// OrganizationNames returns the name followed by its non-empty aliases.
func (p *OrganizationProfile) OrganizationNames() []string {
	names := []string{p.Name}
	for _, a := range p.Aliases {
		if strings.TrimSpace(a) != "" {
			names = append(names, a)
		}
	}
	return names
}

// CompetitorNames lists tracked competitor names in profile order.
func (p *OrganizationProfile) CompetitorNames() []string {
	names := make([]string, 0, len(p.Competitors))
	for _, c := range p.Competitors {
		names = append(names, c.Name)
	}
	return names
}

// StakeholderNames lists tracked stakeholder names in profile order.
func (p *OrganizationProfile) StakeholderNames() []string {
	names := make([]string, 0, len(p.Stakeholders))
	for _, s := range p.Stakeholders {
		names = append(names, s.Name)
	}
	return names
}

// TopicTargets returns the explicit topics, falling back to the keyword list.
func (p *OrganizationProfile) TopicTargets() []string {
	if len(p.Topics) > 0 {
		return p.Topics
	}
	return p.Keywords
}

// Key identifies the organization for storage; ID wins over Name.
func (p *OrganizationProfile) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return strings.ToLower(strings.Join(strings.Fields(p.Name), "-"))
}
