package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	hang  map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, rawURL string) (Extraction, error) {
	if f.hang[rawURL] {
		// Ignores ctx on purpose: the enricher must still time out.
		time.Sleep(time.Second)
	}
	if err := f.errs[rawURL]; err != nil {
		return Extraction{}, err
	}
	return Extraction{Text: f.texts[rawURL]}, nil
}

func scored(id, url, snippet string, score int) model.ScoredDocument {
	return model.ScoredDocument{
		Document:       model.Document{ID: id, URL: url, Title: "Title " + id, Snippet: snippet},
		RelevanceScore: score,
	}
}

func TestEnrichStatuses(t *testing.T) {
	long := strings.Repeat("Acme shipped widgets to new markets. ", 10)
	ex := &fakeExtractor{
		texts: map[string]string{
			"https://a.example/long":  long,
			"https://a.example/short": "Short body.",
			"https://a.example/empty": "   ",
		},
		errs: map[string]error{"https://a.example/err": errors.New("connection refused")},
		hang: map[string]bool{"https://a.example/slow": true},
	}
	docs := []model.ScoredDocument{
		scored("d1", "https://a.example/long", "snippet one", 90),
		scored("d2", "https://a.example/short", "snippet two", 80),
		scored("d3", "https://a.example/slow", "snippet three", 70),
		scored("d4", "https://a.example/err", "snippet four", 60),
		scored("d5", "", "snippet five", 50),
		scored("d6", "https://a.example/empty", "snippet six", 40),
		scored("d7", "https://a.example/long", "beyond budget", 30),
	}

	e := &Enricher{Extractor: ex, Concurrency: 3, Budget: 6, Timeout: 50 * time.Millisecond}
	var log model.FailureLog
	res := e.Enrich(context.Background(), docs, &log)

	require.Len(t, res.Documents, len(docs))
	want := []model.ExtractionStatus{
		model.ExtractionSuccess,
		model.ExtractionPartial,
		model.ExtractionFailed,
		model.ExtractionFailed,
		model.ExtractionFailed,
		model.ExtractionFailed,
		model.ExtractionNotAttempted,
	}
	for i, ed := range res.Documents {
		assert.Equal(t, docs[i].ID, ed.ID, "order preserved")
		assert.Equal(t, want[i], ed.ExtractionStatus, ed.ID)
		assert.NotEmpty(t, ed.Snippet)
		assert.NotEmpty(t, ed.Text())
	}

	timedOut := res.Documents[2]
	assert.Empty(t, timedOut.FullText)
	assert.Equal(t, "snippet three", timedOut.Text())

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Partial)
	assert.Equal(t, 4, res.Failed)

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"d3", "d4", "d5", "d6"}, []string{entries[0].Subject, entries[1].Subject, entries[2].Subject, entries[3].Subject})
	for _, f := range entries {
		assert.Equal(t, model.FailureExtractionFailed, f.Kind)
	}
	assert.Contains(t, entries[0].Reason, "timed out")
}

func TestReadabilityExtractor(t *testing.T) {
	page := `<html><head><title>Acme expands</title></head><body>
<nav>Home | News | About</nav>
<article><h1>Acme expands</h1>
<p>` + strings.Repeat("Acme announced a new factory in Ohio that will employ hundreds of workers. ", 8) + `</p>
<p>` + strings.Repeat("The expansion follows record quarterly revenue and strong demand. ", 6) + `</p>
</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	ex := NewReadabilityExtractor(srv.Client(), "")
	got, err := ex.Extract(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Acme announced a new factory")

	_, err = ex.Extract(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestServiceExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://news.example/1", req["url"])
		_ = json.NewEncoder(w).Encode(Extraction{Text: "full text", Status: model.ExtractionPartial})
	}))
	defer srv.Close()

	got, err := NewServiceExtractor(srv.URL, srv.Client()).Extract(context.Background(), "https://news.example/1")
	require.NoError(t, err)
	assert.Equal(t, "full text", got.Text)
	assert.Equal(t, model.ExtractionPartial, got.Status)
}

func TestQuotesAndMetrics(t *testing.T) {
	text := `The CEO said "we are doubling our investment in battery research" on Monday. ` +
		`A spokesperson added “short one”. Revenue rose 12.5% to $4.2 billion, ` +
		`while costs fell 3 % and headcount reached 1,200 thousand. Another "we are doubling our investment in battery research".`

	assert.Equal(t, []string{"we are doubling our investment in battery research"}, Quotes(text))
	assert.Equal(t, []string{"12.5%", "$4.2 billion", "3 %", "1,200 thousand"}, Metrics(text))
}

func TestBuildChunksKeepsDocumentsWhole(t *testing.T) {
	mk := func(id string, n int) model.EnrichedDocument {
		return model.EnrichedDocument{
			ScoredDocument: model.ScoredDocument{Document: model.Document{ID: id, Title: id}},
			FullText:       strings.Repeat("x", n),
		}
	}
	docs := []model.EnrichedDocument{mk("a", 100), mk("b", 100), mk("c", 100), mk("huge", 1000), mk("d", 10)}

	limit := 2*len(DocumentBlock(docs[0])) + 5
	chunks := BuildChunks(docs, limit)

	require.Len(t, chunks, 4)
	assert.Equal(t, []string{"a", "b"}, chunks[0].DocumentIDs)
	assert.Equal(t, []string{"c"}, chunks[1].DocumentIDs)
	assert.Equal(t, []string{"huge"}, chunks[2].DocumentIDs)
	assert.Equal(t, []string{"d"}, chunks[3].DocumentIDs)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, len(c.Text), limit)
	}
	assert.Contains(t, chunks[0].Text, "[doc a] a")
	assert.Contains(t, chunks[0].Text, "[doc b] b")

	assert.Len(t, BuildChunks(docs, 0), 1)
	assert.Empty(t, BuildChunks(nil, 10))
}
