package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const acmeYAML = `
name: Acme
aliases: [Acme Corp]
competitors:
  - name: Ford
    tier: direct
stakeholders:
  - name: NHTSA
    type: regulator
crisis_keywords: [recall]
sources:
  - name: trade-news
    endpoint: https://trade.example.com/rss
    type: rss
    priority: 2
`

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.yaml"), []byte(acmeYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("industry: cars\n"), 0o644))

	p := NewFileProvider(dir)
	prof, err := p.GetProfile(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", prof.ID)
	assert.Equal(t, "Acme", prof.Name)
	assert.Equal(t, []string{"Acme", "Acme Corp"}, prof.OrganizationNames())
	assert.Equal(t, model.TierDirect, prof.Competitors[0].Tier)
	assert.Equal(t, model.SourceRSS, prof.Sources[0].Type)
	assert.Equal(t, 2, prof.Sources[0].Priority)

	_, err = p.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.GetProfile(context.Background(), "broken")
	assert.ErrorIs(t, err, model.ErrInvalidProfile)

	_, err = p.GetProfile(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profiles/acme":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"Acme","competitors":[{"name":"Ford"}],"crisis_keywords":["recall"]}`))
		case "/profiles/bad":
			_, _ = w.Write([]byte(`{"name":"Acme","sources":[{"name":"x","type":"fax"}]}`))
		case "/profiles/boom":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL+"/", srv.Client())
	prof, err := p.GetProfile(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", prof.ID)
	assert.Equal(t, []string{"Ford"}, prof.CompetitorNames())

	_, err = p.GetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.GetProfile(context.Background(), "bad")
	assert.ErrorIs(t, err, model.ErrInvalidProfile)

	_, err = p.GetProfile(context.Background(), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewProvider(t *testing.T) {
	assert.IsType(t, &HTTPProvider{}, NewProvider(config.ProfilesConfig{ProviderURL: "http://discovery"}, nil))
	assert.IsType(t, &FileProvider{}, NewProvider(config.ProfilesConfig{Dir: "profiles"}, nil))
}
