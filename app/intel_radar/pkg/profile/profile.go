// Package profile loads organization profiles from disk or the discovery service.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ErrNotFound is returned when no profile exists for the organization.
var ErrNotFound = errors.New("profile not found")

// Provider resolves an organization id to its profile. Callers make a single attempt.
type Provider interface {
	GetProfile(ctx context.Context, orgID string) (*model.OrganizationProfile, error)
}

// NewProvider returns an HTTPProvider when a provider URL is configured,
// otherwise a FileProvider over the profile directory.
func NewProvider(cfg config.ProfilesConfig, hc *http.Client) Provider {
	if cfg.ProviderURL != "" {
		return NewHTTPProvider(cfg.ProviderURL, hc)
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "profiles"
	}
	return NewFileProvider(dir)
}

// FileProvider reads <dir>/<orgID>.yaml.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (p *FileProvider) GetProfile(_ context.Context, orgID string) (*model.OrganizationProfile, error) {
	if err := checkID(orgID); err != nil {
		return nil, err
	}
	prof, err := LoadFile(filepath.Join(p.dir, orgID+".yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orgID)
	}
	if err != nil {
		return nil, err
	}
	if prof.ID == "" {
		prof.ID = orgID
	}
	return prof, nil
}

// LoadFile decodes a YAML (or JSON) profile file and validates it.
func LoadFile(path string) (*model.OrganizationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var prof model.OrganizationProfile
	if err := yaml.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", model.ErrInvalidProfile, path, err)
	}
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return &prof, nil
}

// HTTPProvider fetches GET <base>/profiles/<orgID> from the discovery service.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, hc *http.Client) *HTTPProvider {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPProvider{baseURL: strings.TrimRight(baseURL, "/"), client: hc}
}

func (p *HTTPProvider) GetProfile(ctx context.Context, orgID string) (*model.OrganizationProfile, error) {
	if err := checkID(orgID); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/profiles/"+url.PathEscape(orgID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orgID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("profile provider: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var prof model.OrganizationProfile
	if err := json.NewDecoder(resp.Body).Decode(&prof); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrInvalidProfile, err)
	}
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	if prof.ID == "" {
		prof.ID = orgID
	}
	return &prof, nil
}

func checkID(orgID string) error {
	if orgID == "" || strings.ContainsAny(orgID, `/\`) || strings.Contains(orgID, "..") {
		return fmt.Errorf("%w: bad organization id %q", ErrNotFound, orgID)
	}
	return nil
}
