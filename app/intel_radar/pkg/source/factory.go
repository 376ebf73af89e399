package source

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/searxng"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/sentiment"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/tavily"
)

// Factory turns profile sources and the configured search provider into adapters.
type Factory struct {
	cfg     *config.Config
	client  *http.Client
	limiter *rate.Limiter
}

// NewFactory creates a Factory. Search providers share one limiter derived from cfg.Concurrency.
func NewFactory(cfg *config.Config, hc *http.Client) *Factory {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Factory{cfg: cfg, client: hc, limiter: NewLimiter(cfg.Concurrency)}
}

// NewLimiter converts a qps/rpm setting into a token bucket; zero means unlimited.
func NewLimiter(c config.ConcurrencyConfig) *rate.Limiter {
	switch {
	case c.QPS > 0:
		return rate.NewLimiter(rate.Limit(c.QPS), c.QPS)
	case c.RPM > 0:
		return rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.RPM)), 1)
	}
	return rate.NewLimiter(rate.Inf, 1)
}

// NewSearcher builds the default search provider.
func (f *Factory) NewSearcher() (search.Searcher, error) {
	sc := f.cfg.Search
	switch sc.Provider {
	case "", "tavily":
		if sc.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		opts := []tavily.Option{tavily.WithHTTPClient(f.client), tavily.WithLimiter(f.limiter)}
		if sc.Tavily.BaseURL != "" {
			opts = append(opts, tavily.WithBaseURL(sc.Tavily.BaseURL))
		}
		return tavily.NewClient(sc.Tavily.APIKey, opts...), nil
	case "searxng":
		if sc.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(sc.SearXNG.BaseURL, sc.SearXNG.Timeout), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", sc.Provider)
	}
}

// Build returns one adapter per profile source plus the default search
// provider, ordered by tier then declaration order.
func (f *Factory) Build(p *model.OrganizationProfile) ([]Adapter, error) {
	var adapters []Adapter

	var defaultSearcher search.Searcher
	if f.cfg.Search.Provider != "none" {
		s, err := f.NewSearcher()
		if err != nil {
			return nil, err
		}
		defaultSearcher = s
		typ := model.SourceWebSearch
		if f.cfg.Search.Topic == "news" {
			typ = model.SourceNewsSearch
		}
		adapters = append(adapters, NewSearchAdapter(f.searchName(), typ, 1, s))
	}

	lexicon := sentiment.FromScoring(f.cfg.Scoring)
	for _, src := range p.Sources {
		switch src.Type {
		case model.SourceRSS:
			adapters = append(adapters, NewRSSAdapter(src.Name, src.Endpoint, src.Priority, f.client))
		case model.SourceWebSearch, model.SourceNewsSearch:
			// An endpoint names a dedicated SearXNG instance; otherwise reuse the default provider.
			var s search.Searcher = defaultSearcher
			if src.Endpoint != "" {
				s = searxng.NewClient(src.Endpoint, f.cfg.Search.SearXNG.Timeout)
			}
			if s == nil {
				return nil, fmt.Errorf("source %s: no search provider configured", src.Name)
			}
			adapters = append(adapters, NewSearchAdapter(src.Name, src.Type, src.Priority, s))
		case model.SourceSocial:
			adapters = append(adapters, NewSocialAdapter(src.Name, src.Endpoint, f.cfg.Social.APIKey, src.Priority, lexicon, f.client))
		default:
			return nil, fmt.Errorf("source %s: unsupported type %q", src.Name, src.Type)
		}
	}

	sort.SliceStable(adapters, func(i, j int) bool {
		return adapters[i].Tier() < adapters[j].Tier()
	})
	return adapters, nil
}

func (f *Factory) searchName() string {
	if f.cfg.Search.Provider == "" {
		return "tavily"
	}
	return f.cfg.Search.Provider
}
