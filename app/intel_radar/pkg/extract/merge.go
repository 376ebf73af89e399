package extract

import (
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

type entityAcc struct {
	entity model.Entity
	votes  map[model.Sentiment]int
}

// Merge concatenates chunk outputs in chunk order. Entities are merged by
// case-insensitive name: the first sighting keeps its name and type,
// mention counts are summed and sentiment is the mention-weighted majority.
func Merge(outputs []ChunkOutput) ([]model.Entity, []model.Event) {
	var (
		order  []string
		byKey  = map[string]*entityAcc{}
		events []model.Event
	)
	for _, o := range outputs {
		for _, e := range o.Entities {
			key := strings.ToLower(strings.TrimSpace(e.Name))
			acc, ok := byKey[key]
			if !ok {
				acc = &entityAcc{entity: e, votes: map[model.Sentiment]int{}}
				acc.entity.MentionCount = 0
				byKey[key] = acc
				order = append(order, key)
			}
			acc.entity.MentionCount += e.MentionCount
			acc.votes[e.Sentiment] += e.MentionCount
		}
		events = append(events, o.Events...)
	}

	entities := make([]model.Entity, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		acc.entity.Sentiment = majorityOr(acc.votes, acc.entity.Sentiment)
		entities = append(entities, acc.entity)
	}
	return entities, events
}

// majority picks the sentiment with most votes; ties resolve to neutral.
func majority(votes map[model.Sentiment]int) model.Sentiment {
	return majorityOr(votes, model.SentimentNeutral)
}

func majorityOr(votes map[model.Sentiment]int, tie model.Sentiment) model.Sentiment {
	best, bestN, tied := tie, -1, false
	// Fixed iteration order keeps the result independent of map order.
	for _, s := range []model.Sentiment{model.SentimentNegative, model.SentimentNeutral, model.SentimentPositive} {
		n := votes[s]
		switch {
		case n > bestN:
			best, bestN, tied = s, n, false
		case n == bestN:
			tied = true
		}
	}
	if tied || bestN <= 0 {
		return tie
	}
	return best
}
