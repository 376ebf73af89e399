package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "news", r.URL.Query().Get("categories"))
		_, _ = w.Write([]byte(`{"query":"acme","results":[
			{"title":"One","url":"https://a.example/1","content":"c1","publishedDate":"2026-03-01T10:00:00"},
			{"title":"One again","url":"https://a.example/1","content":"dup"},
			{"title":"Two","url":"https://a.example/2","content":"c2"},
			{"title":"Three","url":"https://a.example/3","content":"c3"}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, 5).Search(context.Background(), &search.Request{Query: "acme", Topic: "news", MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "One", resp.Results[0].Title)
	assert.Equal(t, "2026-03-01T10:00:00", resp.Results[0].PublishedDate)
	assert.Equal(t, "Two", resp.Results[1].Title)
}

func TestClient_SearchUnderPathPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searx/search", r.URL.Path)
		assert.Equal(t, "week", r.URL.Query().Get("time_range"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/searx", 5)
	c.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	resp, err := c.Search(context.Background(), &search.Request{Query: "acme", StartDate: "2026-03-01"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestTimeRange(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "", timeRange("", now))
	assert.Equal(t, "", timeRange("yesterday", now))
	assert.Equal(t, "day", timeRange("2026-03-10", now))
	assert.Equal(t, "week", timeRange("2026-03-05", now))
	assert.Equal(t, "month", timeRange("2026-02-20", now))
	assert.Equal(t, "year", timeRange("2025-06-01", now))
}

func TestClient_SearchClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5).Search(context.Background(), &search.Request{Query: "acme"})
	require.Error(t, err)
	var se *search.StatusError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Temporary())
}
