package model

import "time"

// Category is the keyword family that dominated a document's score.
type Category string

const (
	CategoryCrisis      Category = "crisis"
	CategoryOpportunity Category = "opportunity"
	CategoryGeneral     Category = "general"
)

// ExtractionStatus records the outcome of full-text enrichment.
type ExtractionStatus string

const (
	ExtractionSuccess      ExtractionStatus = "success"
	ExtractionPartial      ExtractionStatus = "partial"
	ExtractionFailed       ExtractionStatus = "failed"
	ExtractionNotAttempted ExtractionStatus = "not_attempted"
)

// Sentiment of an entity or social mention.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SocialMeta carries the social-specific fields of a mention.
type SocialMeta struct {
	MentionID  string    `json:"mention_id,omitempty"`
	Platform   string    `json:"platform"`
	Author     string    `json:"author"`
	Verified   bool      `json:"verified,omitempty"`
	Engagement int       `json:"engagement"`
	Sentiment  Sentiment `json:"sentiment,omitempty"`
}

// Document is one candidate unit of intelligence. ID is the fingerprint assigned by the deduplicator.
type Document struct {
	ID          string      `json:"id"`
	URL         string      `json:"url,omitempty"`
	Title       string      `json:"title"`
	Snippet     string      `json:"snippet"`
	Source      string      `json:"source"`
	SourceType  SourceType  `json:"source_type"`
	PublishedAt time.Time   `json:"published_at,omitempty"`
	QueryUsed   string      `json:"query_used"`
	Social      *SocialMeta `json:"social,omitempty"`
}

// HasTimestamp reports whether the source supplied a publication time.
func (d Document) HasTimestamp() bool {
	return !d.PublishedAt.IsZero()
}

// ScoreFactor is one named contribution to a relevance score.
type ScoreFactor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ScoredDocument is a Document with its relevance score.
type ScoredDocument struct {
	Document
	RelevanceScore int           `json:"relevance_score"`
	ScoreFactors   []ScoreFactor `json:"score_factors"`
	Category       Category      `json:"category"`
	// DiscoveryIndex is the position in the deduplicated list, used to break score ties.
	DiscoveryIndex int `json:"discovery_index"`
}

// EnrichedDocument is a ScoredDocument after full-text extraction.
type EnrichedDocument struct {
	ScoredDocument
	FullText         string           `json:"full_text,omitempty"`
	ExtractionStatus ExtractionStatus `json:"extraction_status"`
	Quotes           []string         `json:"quotes,omitempty"`
	Metrics          []string         `json:"metrics,omitempty"`
}

// Text returns the full text, or the snippet when enrichment produced nothing.
func (d EnrichedDocument) Text() string {
	if d.FullText != "" {
		return d.FullText
	}
	return d.Snippet
}

// Chunk is an ordered slice of enriched text handed to the extractor.
// A document's text never spans two chunks.
type Chunk struct {
	Index       int      `json:"index"`
	DocumentIDs []string `json:"document_ids"`
	Text        string   `json:"text"`
}
