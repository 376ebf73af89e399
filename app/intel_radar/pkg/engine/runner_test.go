package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

type mapProvider map[string]*model.OrganizationProfile

func (m mapProvider) GetProfile(_ context.Context, orgID string) (*model.OrganizationProfile, error) {
	p, ok := m[orgID]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

type recordingStore struct {
	saved []*model.IntelligenceBrief
	err   error
}

func (s *recordingStore) Save(_ context.Context, b *model.IntelligenceBrief) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, b)
	return nil
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, *model.IntelligenceBrief) error {
	p.calls++
	return errors.New("nats down")
}

func TestRunnerStoresAndPublishes(t *testing.T) {
	store := &recordingStore{}
	pub := &failingPublisher{}
	r := &Runner{
		Profiles:  mapProvider{"acme": acme()},
		Pipeline:  newPipeline(adapterList{&fixedAdapter{name: "wire", docs: articles()}}, &stubExtractor{}),
		Store:     store,
		Publisher: pub,
	}

	b, err := r.RunForOrganization(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Same(t, b, store.saved[0])
	assert.Equal(t, 1, pub.calls)
}

func TestRunnerProfileErrorStopsRun(t *testing.T) {
	store := &recordingStore{}
	r := &Runner{Profiles: mapProvider{}, Pipeline: newPipeline(nil, &stubExtractor{}), Store: store}

	_, err := r.RunForOrganization(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.Empty(t, store.saved)
}

func TestRunnerReturnsBriefOnStoreFailure(t *testing.T) {
	r := &Runner{
		Profiles: mapProvider{"acme": acme()},
		Pipeline: newPipeline(adapterList{&fixedAdapter{name: "wire", docs: articles()}}, &stubExtractor{}),
		Store:    &recordingStore{err: errors.New("disk full")},
	}

	b, err := r.RunForOrganization(context.Background(), "acme")
	require.Error(t, err)
	require.NotNil(t, b)
	assert.NotEmpty(t, b.Documents)
}
