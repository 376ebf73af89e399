package pattern

import "github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"

// SignalsFromDocuments lifts the social mentions out of a document list.
func SignalsFromDocuments(docs []model.Document) []model.SocialSignal {
	var out []model.SocialSignal
	for _, d := range docs {
		if d.Social == nil {
			continue
		}
		id := d.Social.MentionID
		if id == "" {
			id = d.ID
		}
		out = append(out, model.SocialSignal{
			ID:         id,
			Platform:   d.Social.Platform,
			Content:    d.Snippet,
			Author:     d.Social.Author,
			Verified:   d.Social.Verified,
			Engagement: d.Social.Engagement,
			Sentiment:  d.Social.Sentiment,
			Timestamp:  d.PublishedAt,
			URL:        d.URL,
		})
	}
	return out
}
