package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

// maxPageBytes bounds how much of a page is read for extraction.
const maxPageBytes = 8 << 20

// Extraction is the full-text result for one URL.
type Extraction struct {
	Text   string                 `json:"text"`
	Status model.ExtractionStatus `json:"status"`
}

// Extractor retrieves the full text behind a URL.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (Extraction, error)
}

// ReadabilityExtractor downloads the page and extracts the article body in process.
type ReadabilityExtractor struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityExtractor returns an extractor using hc (http.DefaultClient when nil).
func NewReadabilityExtractor(hc *http.Client, userAgent string) *ReadabilityExtractor {
	if hc == nil {
		hc = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; intel-radar/1.0)"
	}
	return &ReadabilityExtractor{client: hc, userAgent: userAgent}
}

// Extract fetches rawURL and returns its readable text.
func (e *ReadabilityExtractor) Extract(ctx context.Context, rawURL string) (Extraction, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Extraction{}, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return Extraction{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Extraction{}, &search.StatusError{Provider: "readability", StatusCode: resp.StatusCode, Body: resp.Status}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), pageURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("readability: %w", err)
	}
	return Extraction{Text: article.TextContent}, nil
}

// ServiceExtractor delegates to an external extraction service that accepts
// POST {"url": ...} and answers {"text": ..., "status": ...}.
type ServiceExtractor struct {
	endpoint string
	client   *http.Client
}

// NewServiceExtractor returns an extractor for the service at endpoint.
func NewServiceExtractor(endpoint string, hc *http.Client) *ServiceExtractor {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ServiceExtractor{endpoint: endpoint, client: hc}
}

// Extract asks the service for rawURL's text.
func (e *ServiceExtractor) Extract(ctx context.Context, rawURL string) (Extraction, error) {
	body, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return Extraction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Extraction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Extraction{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Extraction{}, &search.StatusError{Provider: "extraction", StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var out Extraction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction: %w", err)
	}
	return out, nil
}
