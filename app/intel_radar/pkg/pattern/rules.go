package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

const titleRunes = 90

// eventPatterns covers competitor-crisis, regulatory-shift and market-disruption.
func (r *run) eventPatterns() {
	p := r.in.Profile
	org := p.Name
	competitors := p.CompetitorNames()
	stakeholders := p.StakeholderNames()

	for i, ev := range r.in.Events {
		text, url := r.eventContext(ev)
		evidence := r.eventEvidence(i, ev)

		if ev.Type == model.EventCrisis || ev.Type == model.EventRegulatory {
			if comp := referenced(ev, competitors); comp != "" {
				sev := r.severity(ev.Description + "\n" + text)
				urgency := model.UrgencyThisWeek
				if sev == model.SeverityCritical || sev == model.SeverityHigh {
					urgency = model.UrgencyImmediate
				}
				kw := r.keywordMatches(ev.Description+"\n"+text, r.crisisTerms())
				r.emit(model.Signal{
					Kind:            model.KindOpportunity,
					Title:           textutil.Truncate(fmt.Sprintf("%s crisis: %s", comp, ev.Description), titleRunes),
					PatternMatched:  CompetitorCrisis,
					Entity:          comp,
					Score:           Confidence(kw, textutil.RuneLen(text), url != ""),
					Urgency:         urgency,
					Severity:        sev,
					Category:        "competitive",
					Description:     ev.Description,
					TriggerEvidence: evidence,
					RecommendedAction: model.RecommendedAction{
						Who:   "Communications lead",
						What:  fmt.Sprintf("Position %s as the stable alternative while %s deals with: %s", org, comp, ev.Description),
						Where: "Press outreach and owned channels",
					},
				})
			}
		}

		if ev.Type == model.EventRegulatory {
			if sh := referenced(ev, stakeholders); sh != "" {
				urgency := model.UrgencyThisWeek
				if ev.Significance == model.SignificanceLow {
					urgency = model.UrgencyMonitor
				}
				kw := r.keywordMatches(ev.Description+"\n"+text, join(p.TopicTargets(), p.Keywords))
				r.emit(model.Signal{
					Kind:            model.KindOpportunity,
					Title:           textutil.Truncate(fmt.Sprintf("Regulatory shift (%s): %s", sh, ev.Description), titleRunes),
					PatternMatched:  RegulatoryShift,
					Entity:          sh,
					Score:           Confidence(kw, textutil.RuneLen(text), url != ""),
					Urgency:         urgency,
					Category:        "regulatory",
					Description:     ev.Description,
					TriggerEvidence: evidence,
					RecommendedAction: model.RecommendedAction{
						Who:   "Public affairs",
						What:  fmt.Sprintf("Prepare %s's position on: %s", org, ev.Description),
						Where: "Regulatory briefings and trade press",
					},
				})
			}
		}

		if ev.Type == model.EventMarket &&
			(ev.Significance == model.SignificanceHigh || ev.Significance == model.SignificanceCritical) {
			entity := ev.Entity
			if entity == "" {
				entity = org
			}
			kw := r.keywordMatches(ev.Description+"\n"+text, join(p.OpportunityKeywords, p.Keywords))
			r.emit(model.Signal{
				Kind:            model.KindOpportunity,
				Title:           textutil.Truncate(fmt.Sprintf("Market disruption: %s", ev.Description), titleRunes),
				PatternMatched:  MarketDisruption,
				Entity:          entity,
				Score:           Confidence(kw, textutil.RuneLen(text), url != ""),
				Urgency:         model.UrgencyThisWeek,
				Category:        "market",
				Description:     ev.Description,
				TriggerEvidence: evidence,
				RecommendedAction: model.RecommendedAction{
					Who:   "Marketing lead",
					What:  fmt.Sprintf("Respond to the market move by %s: %s", entity, ev.Description),
					Where: "Sales and marketing channels",
				},
			})
		}
	}
}

// sentimentSpike emits at most one alert for the organization.
func (r *run) sentimentSpike() {
	p := r.in.Profile
	window := time.Duration(r.d.cfg.SentimentWindowHours) * time.Hour
	now := r.d.now()

	var hits []model.SocialSignal
	seen := map[string]bool{}
	for _, s := range r.in.Social {
		if s.Sentiment != model.SentimentNegative || textutil.AnyTerm(s.Content, p.OrganizationNames()) == "" {
			continue
		}
		if !s.Timestamp.IsZero() && now.Sub(s.Timestamp) > window {
			continue
		}
		key := signalKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		hits = append(hits, s)
	}
	if len(hits) < r.d.cfg.SentimentSpikeMin {
		return
	}

	sev := model.SeverityHigh
	if len(hits) >= 2*r.d.cfg.SentimentSpikeMin {
		sev = model.SeverityCritical
	}
	content, url, evidence := socialContext(hits)
	kw := r.keywordMatches(content, r.crisisTerms())
	desc := fmt.Sprintf("%d negative mentions of %s in the last %d hours", len(hits), p.Name, r.d.cfg.SentimentWindowHours)
	r.emit(model.Signal{
		Kind:            model.KindAlert,
		Title:           fmt.Sprintf("Negative sentiment spike for %s", p.Name),
		PatternMatched:  SocialSentimentSpike,
		Entity:          p.Name,
		Score:           Confidence(kw, textutil.RuneLen(content), url != ""),
		Urgency:         model.UrgencyImmediate,
		Severity:        sev,
		Category:        "reputation",
		Description:     desc,
		TriggerEvidence: evidence,
		RecommendedAction: model.RecommendedAction{
			Who:   "Crisis response team",
			What:  fmt.Sprintf("Investigate and respond to %d negative mentions", len(hits)),
			Where: platforms(hits),
		},
	})
}

func (r *run) trendingHashtags() {
	var order []string
	bySignal := map[string][]model.SocialSignal{}
	seen := map[string]map[string]bool{}
	for _, s := range r.in.Social {
		key := signalKey(s)
		for _, tag := range textutil.Hashtags(s.Content) {
			if seen[tag] == nil {
				seen[tag] = map[string]bool{}
				order = append(order, tag)
			}
			if seen[tag][key] {
				continue
			}
			seen[tag][key] = true
			bySignal[tag] = append(bySignal[tag], s)
		}
	}

	topics := join(r.in.Profile.TopicTargets(), r.in.Profile.OrganizationNames())
	for _, tag := range order {
		signals := bySignal[tag]
		if len(signals) < r.d.cfg.HashtagMin {
			continue
		}
		content, url, evidence := socialContext(signals)
		kw := r.keywordMatches(content, topics)
		r.emit(model.Signal{
			Kind:            model.KindOpportunity,
			Title:           fmt.Sprintf("#%s is trending", tag),
			PatternMatched:  TrendingHashtag,
			Entity:          "#" + tag,
			Score:           Confidence(kw, textutil.RuneLen(content), url != ""),
			Urgency:         model.UrgencyThisWeek,
			Category:        "social",
			Description:     fmt.Sprintf("#%s appeared in %d distinct social mentions", tag, len(signals)),
			TriggerEvidence: evidence,
			RecommendedAction: model.RecommendedAction{
				Who:   "Social media manager",
				What:  fmt.Sprintf("Join the #%s conversation with %s's perspective", tag, r.in.Profile.Name),
				Where: platforms(signals),
			},
		})
	}
}

func (r *run) influencers() {
	topics := join(r.in.Profile.TopicTargets(), r.in.Profile.OrganizationNames())
	for _, s := range r.in.Social {
		threshold := r.d.cfg.InfluencerEngagement
		if s.Verified {
			threshold = r.d.cfg.VerifiedEngagement
		}
		if s.Engagement <= threshold {
			continue
		}
		matched := textutil.MatchedTerms(s.Content, topics)
		if len(matched) == 0 {
			continue
		}
		author := s.Author
		if author == "" {
			author = "unknown author"
		}
		_, url, evidence := socialContext([]model.SocialSignal{s})
		r.emit(model.Signal{
			Kind:            model.KindOpportunity,
			Title:           textutil.Truncate(fmt.Sprintf("%s mentioned %s", author, matched[0]), titleRunes),
			PatternMatched:  InfluencerMention,
			Entity:          author,
			Score:           Confidence(len(matched), textutil.RuneLen(s.Content), url != ""),
			Urgency:         model.UrgencyThisWeek,
			Category:        "social",
			Description:     textutil.Truncate(s.Content, 280),
			TriggerEvidence: evidence,
			RecommendedAction: model.RecommendedAction{
				Who:   "Influencer relations",
				What:  fmt.Sprintf("Engage with %s's post (%d engagements) about %s", author, s.Engagement, matched[0]),
				Where: platforms([]model.SocialSignal{s}),
			},
		})
	}
}

func (r *run) volumeSpike() {
	n := r.in.DocumentCount
	if n <= r.d.cfg.VolumeThreshold {
		return
	}
	r.emit(model.Signal{
		Kind:           model.KindAlert,
		Title:          fmt.Sprintf("High coverage volume for %s", r.in.Profile.Name),
		PatternMatched: VolumeSpike,
		Entity:         r.in.Profile.Name,
		Score:          Confidence(0, 0, false),
		Urgency:        model.UrgencyThisWeek,
		Severity:       model.SeverityHigh,
		Category:       "volume",
		Description:    fmt.Sprintf("%d documents collected in this run (threshold %d)", n, r.d.cfg.VolumeThreshold),
		TriggerEvidence: []model.Evidence{
			{Kind: "aggregate", Ref: fmt.Sprintf("documents:%d", n)},
		},
		RecommendedAction: model.RecommendedAction{
			Who:   "Communications lead",
			What:  "Review the collected coverage for an emerging story",
			Where: "Monitoring dashboard",
		},
	})
}

// severity scales by keyword set: critical, then high, otherwise medium.
func (r *run) severity(text string) model.Severity {
	switch {
	case textutil.AnyTerm(text, r.d.cfg.CriticalKeywords) != "":
		return model.SeverityCritical
	case textutil.AnyTerm(text, r.d.cfg.HighKeywords) != "":
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

func (r *run) crisisTerms() []string {
	return join(r.in.Profile.CrisisKeywords, r.d.cfg.CriticalKeywords, r.d.cfg.HighKeywords)
}

func join(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// keywordMatches counts distinct terms found in text.
func (r *run) keywordMatches(text string, terms []string) int {
	seen := map[string]bool{}
	n := 0
	for _, t := range textutil.MatchedTerms(text, terms) {
		k := strings.ToLower(t)
		if !seen[k] {
			seen[k] = true
			n++
		}
	}
	return n
}

// eventContext returns the source document text and URL of ev, if known.
func (r *run) eventContext(ev model.Event) (string, string) {
	if doc, ok := r.docs[ev.SourceID]; ok {
		return doc.Text(), doc.URL
	}
	return ev.Description, ""
}

func (r *run) eventEvidence(i int, ev model.Event) []model.Evidence {
	out := []model.Evidence{{Kind: "event", Ref: fmt.Sprintf("event:%d", i)}}
	if ev.SourceID != "" {
		out = append(out, model.Evidence{Kind: "document", Ref: ev.SourceID})
	}
	return out
}

// referenced returns the first target named by the event's entity, then its description.
func referenced(ev model.Event, targets []string) string {
	for _, t := range targets {
		if textutil.ContainsTerm(ev.Entity, t) {
			return t
		}
	}
	for _, t := range targets {
		if textutil.ContainsTerm(ev.Description, t) {
			return t
		}
	}
	return ""
}

func signalKey(s model.SocialSignal) string {
	if s.ID != "" {
		return "id:" + s.ID
	}
	if s.URL != "" {
		return "url:" + s.URL
	}
	return "c:" + strings.ToLower(textutil.NormalizeSpace(s.Content))
}

func socialContext(signals []model.SocialSignal) (string, string, []model.Evidence) {
	var sb strings.Builder
	url := ""
	evidence := make([]model.Evidence, 0, len(signals))
	for _, s := range signals {
		sb.WriteString(s.Content)
		sb.WriteString("\n")
		if url == "" {
			url = s.URL
		}
		ref := s.ID
		if ref == "" {
			ref = s.URL
		}
		evidence = append(evidence, model.Evidence{Kind: "social", Ref: ref})
	}
	return sb.String(), url, evidence
}

func platforms(signals []model.SocialSignal) string {
	var out []string
	seen := map[string]bool{}
	for _, s := range signals {
		if s.Platform != "" && !seen[s.Platform] {
			seen[s.Platform] = true
			out = append(out, s.Platform)
		}
	}
	if len(out) == 0 {
		return "Social channels"
	}
	return strings.Join(out, ", ")
}
