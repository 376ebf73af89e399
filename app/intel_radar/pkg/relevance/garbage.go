package relevance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// GarbageFilter rejects navigation and UI fragments before scoring.
type GarbageFilter struct {
	patterns        []*regexp.Regexp
	minBody         int
	shortTitle      int
	minWordTokenLen int
}

// NewGarbageFilter compiles the boilerplate patterns of cfg.
func NewGarbageFilter(cfg config.ScoringConfig) (*GarbageFilter, error) {
	f := &GarbageFilter{
		minBody:         cfg.MinBodyChars,
		shortTitle:      cfg.ShortTitleChars,
		minWordTokenLen: cfg.MinWordTokenLen,
	}
	for _, p := range cfg.BoilerplateTitle {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("boilerplate pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Reject returns a non-empty reason when d is not an article.
func (f *GarbageFilter) Reject(d model.Document) string {
	title := strings.TrimSpace(d.Title)
	for _, re := range f.patterns {
		if re.MatchString(title) {
			return "boilerplate title"
		}
	}
	if textutil.RuneLen(strings.TrimSpace(d.Snippet)) < f.minBody {
		return "body too short"
	}
	if textutil.RuneLen(title) < f.shortTitle && !textutil.HasWordToken(title, f.minWordTokenLen) {
		return "title has no words"
	}
	return ""
}

// Filter splits docs into kept documents and the number rejected.
func (f *GarbageFilter) Filter(docs []model.Document) ([]model.Document, int) {
	kept := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if f.Reject(d) != "" {
			continue
		}
		kept = append(kept, d)
	}
	return kept, len(docs) - len(kept)
}
