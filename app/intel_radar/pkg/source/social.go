package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/sentiment"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

const socialTitleRunes = 120

// Mention is the wire shape of a social mention feed entry.
type Mention struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	Verified   bool   `json:"verified"`
	Engagement int    `json:"engagement"`
	Sentiment  string `json:"sentiment"`
	URL        string `json:"url"`
	CreatedAt  string `json:"created_at"`
}

type mentionResponse struct {
	Mentions []Mention `json:"mentions"`
}

// SocialAdapter reads a social mention feed over HTTP.
type SocialAdapter struct {
	name     string
	endpoint string
	apiKey   string
	tier     int
	lexicon  sentiment.Lexicon
	client   *http.Client
}

// NewSocialAdapter creates an adapter for the mention feed at endpoint.
func NewSocialAdapter(name, endpoint, apiKey string, tier int, lexicon sentiment.Lexicon, hc *http.Client) *SocialAdapter {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &SocialAdapter{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		tier:     tierOrDefault(tier),
		lexicon:  lexicon,
		client:   hc,
	}
}

var _ Adapter = (*SocialAdapter)(nil)

func (a *SocialAdapter) Name() string           { return a.name }
func (a *SocialAdapter) Type() model.SourceType { return model.SourceSocial }
func (a *SocialAdapter) Tier() int              { return a.tier }

// Fetch requests mentions matching q.
func (a *SocialAdapter) Fetch(ctx context.Context, q query.Query, limit int) ([]model.Document, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint %q: %v", ErrClientRequest, a.endpoint, err)
	}
	params := u.Query()
	params.Set("q", q.Text)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, statusError(a.name, resp.StatusCode, body)
	}

	var mr mentionResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode mentions: %w", err)
	}

	docs := make([]model.Document, 0, len(mr.Mentions))
	for _, m := range mr.Mentions {
		docs = append(docs, a.toDocument(m, q))
		if limit > 0 && len(docs) >= limit {
			break
		}
	}
	return docs, nil
}

func (a *SocialAdapter) toDocument(m Mention, q query.Query) model.Document {
	content := textutil.NormalizeSpace(m.Content)
	sent, ok := sentiment.Normalize(m.Sentiment)
	if !ok {
		sent = a.lexicon.Classify(content)
	}
	platform := m.Platform
	if platform == "" {
		platform = a.name
	}

	return model.Document{
		URL:         m.URL,
		Title:       textutil.Truncate(content, socialTitleRunes),
		Snippet:     content,
		Source:      a.name,
		SourceType:  model.SourceSocial,
		PublishedAt: textutil.ParseTime(m.CreatedAt),
		QueryUsed:   q.Text,
		Social: &model.SocialMeta{
			MentionID:  m.ID,
			Platform:   platform,
			Author:     m.Author,
			Verified:   m.Verified,
			Engagement: m.Engagement,
			Sentiment:  sent,
		},
	}
}
