package config

// ScoringVersion identifies the built-in scoring weights.
const ScoringVersion = "2026.1"

// ScoringConfig is the versioned set of relevance weights and lexicons.
// Every stage reads weights from here, never from package globals.
type ScoringConfig struct {
	Version string `yaml:"version"`

	OrgInTitle         int `yaml:"org_in_title"`
	OrgInBody          int `yaml:"org_in_body"`
	CrisisKeyword      int `yaml:"crisis_keyword"`
	OpportunityKeyword int `yaml:"opportunity_keyword"`
	CompetitorInTitle  int `yaml:"competitor_in_title"`
	CompetitorInBody   int `yaml:"competitor_in_body"`
	RecentBonus        int `yaml:"recent_bonus"`
	NeutralRecency     int `yaml:"neutral_recency"`
	RecentWindowHours  int `yaml:"recent_window_hours"`
	MaxScore           int `yaml:"max_score"`

	// Garbage filter
	MinBodyChars     int      `yaml:"min_body_chars"`
	ShortTitleChars  int      `yaml:"short_title_chars"`
	MinWordTokenLen  int      `yaml:"min_word_token_len"`
	BoilerplateTitle []string `yaml:"boilerplate_title"`

	// Lexicons used when a source carries no sentiment.
	NegativeTerms []string `yaml:"negative_terms"`
	PositiveTerms []string `yaml:"positive_terms"`
}

// DefaultScoring returns the built-in weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Version:            ScoringVersion,
		OrgInTitle:         40,
		OrgInBody:          20,
		CrisisKeyword:      25,
		OpportunityKeyword: 20,
		CompetitorInTitle:  30,
		CompetitorInBody:   15,
		RecentBonus:        20,
		NeutralRecency:     10,
		RecentWindowHours:  24,
		MaxScore:           100,
		MinBodyChars:       50,
		ShortTitleChars:    15,
		MinWordTokenLen:    3,
		BoilerplateTitle: []string{
			`(?i)^\s*skip to (main )?content`,
			`(?i)^\s*(main )?(menu|navigation)\s*$`,
			`(?i)cookie`,
			`(?i)^\s*(log ?in|sign ?in|sign ?up|register)\b`,
			`(?i)^\s*subscribe\b`,
			`(?i)^\s*privacy( policy)?\s*$`,
			`^\s*\d+[.)]?\s*$`,
			`!\[[^\]]*\]\([^)]*\)`,
		},
		NegativeTerms: []string{
			"angry", "awful", "boycott", "broken", "disappointed", "fail", "failed",
			"fraud", "hate", "lawsuit", "outage", "recall", "scam", "terrible", "worst",
		},
		PositiveTerms: []string{
			"amazing", "best", "excellent", "great", "impressed", "love", "recommend",
		},
	}
}

// fill replaces zero weights with the defaults so a partial YAML section stays usable.
func (s *ScoringConfig) fill() {
	d := DefaultScoring()
	if s.Version == "" {
		s.Version = d.Version
	}
	ints := []intDefault{
		{&s.OrgInTitle, d.OrgInTitle},
		{&s.OrgInBody, d.OrgInBody},
		{&s.CrisisKeyword, d.CrisisKeyword},
		{&s.OpportunityKeyword, d.OpportunityKeyword},
		{&s.CompetitorInTitle, d.CompetitorInTitle},
		{&s.CompetitorInBody, d.CompetitorInBody},
		{&s.RecentBonus, d.RecentBonus},
		{&s.NeutralRecency, d.NeutralRecency},
		{&s.RecentWindowHours, d.RecentWindowHours},
		{&s.MaxScore, d.MaxScore},
		{&s.MinBodyChars, d.MinBodyChars},
		{&s.ShortTitleChars, d.ShortTitleChars},
		{&s.MinWordTokenLen, d.MinWordTokenLen},
	}
	for _, f := range ints {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}
	if len(s.BoilerplateTitle) == 0 {
		s.BoilerplateTitle = d.BoilerplateTitle
	}
	if len(s.NegativeTerms) == 0 {
		s.NegativeTerms = d.NegativeTerms
	}
	if len(s.PositiveTerms) == 0 {
		s.PositiveTerms = d.PositiveTerms
	}
}

type intDefault struct {
	dst *int
	def int
}

// PatternConfig holds detector thresholds.
type PatternConfig struct {
	SentimentSpikeMin         int      `yaml:"sentiment_spike_min"`
	SentimentWindowHours      int      `yaml:"sentiment_window_hours"`
	HashtagMin                int      `yaml:"hashtag_min"`
	InfluencerEngagement      int      `yaml:"influencer_engagement"`
	VerifiedEngagement        int      `yaml:"verified_engagement"`
	VolumeThreshold           int      `yaml:"volume_threshold"`
	CriticalKeywords          []string `yaml:"critical_keywords"`
	HighKeywords              []string `yaml:"high_keywords"`
	DescriptionSignatureChars int      `yaml:"description_signature_chars"`
}

// DefaultPatterns returns the built-in thresholds.
func DefaultPatterns() PatternConfig {
	return PatternConfig{
		SentimentSpikeMin:         5,
		SentimentWindowHours:      24,
		HashtagMin:                5,
		InfluencerEngagement:      10000,
		VerifiedEngagement:        1000,
		VolumeThreshold:           10,
		CriticalKeywords:          []string{"death", "hack", "breach", "explosion"},
		HighKeywords:              []string{"recall", "lawsuit", "investigation", "fraud"},
		DescriptionSignatureChars: 50,
	}
}

func (p *PatternConfig) fill() {
	d := DefaultPatterns()
	ints := []intDefault{
		{&p.SentimentSpikeMin, d.SentimentSpikeMin},
		{&p.SentimentWindowHours, d.SentimentWindowHours},
		{&p.HashtagMin, d.HashtagMin},
		{&p.InfluencerEngagement, d.InfluencerEngagement},
		{&p.VerifiedEngagement, d.VerifiedEngagement},
		{&p.VolumeThreshold, d.VolumeThreshold},
		{&p.DescriptionSignatureChars, d.DescriptionSignatureChars},
	}
	for _, f := range ints {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}
	if len(p.CriticalKeywords) == 0 {
		p.CriticalKeywords = d.CriticalKeywords
	}
	if len(p.HighKeywords) == 0 {
		p.HighKeywords = d.HighKeywords
	}
}
