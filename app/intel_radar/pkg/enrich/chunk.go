package enrich

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// DefaultChunkChars is the aggregate character limit of one chunk.
const DefaultChunkChars = 400_000

// DocumentBlock renders one document as it appears inside a chunk. The
// header carries the id so extracted events can be attributed.
func DocumentBlock(ed model.EnrichedDocument) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[doc %s] %s\n", ed.ID, ed.Title)
	if !ed.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "published: %s\n", ed.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	sb.WriteString(ed.Text())
	sb.WriteString("\n\n")
	return sb.String()
}

// BuildChunks packs documents in order into chunks of at most limit
// characters. A document is never split across chunks; a document that
// alone exceeds limit is truncated into a chunk of its own.
func BuildChunks(docs []model.EnrichedDocument, limit int) []model.Chunk {
	if limit <= 0 {
		limit = DefaultChunkChars
	}

	var (
		chunks []model.Chunk
		cur    model.Chunk
		sb     strings.Builder
		size   int
	)
	flush := func() {
		if len(cur.DocumentIDs) == 0 {
			return
		}
		cur.Index = len(chunks)
		cur.Text = sb.String()
		chunks = append(chunks, cur)
		cur = model.Chunk{}
		sb.Reset()
		size = 0
	}

	for _, ed := range docs {
		block := DocumentBlock(ed)
		n := textutil.RuneLen(block)
		if n > limit {
			flush()
			sb.WriteString(textutil.Truncate(block, limit))
			cur.DocumentIDs = append(cur.DocumentIDs, ed.ID)
			flush()
			continue
		}
		if size+n > limit {
			flush()
		}
		sb.WriteString(block)
		size += n
		cur.DocumentIDs = append(cur.DocumentIDs, ed.ID)
	}
	flush()
	return chunks
}
