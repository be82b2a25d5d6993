package summarize

import (
	"github.com/milefeed/milefeed/internal/feed"
	"github.com/milefeed/milefeed/internal/model"
)

// Partition splits a fetched batch into records that still need
// enrichment and records whose summary can be copied from the store.
// The input is deduplicated by GUID first (first occurrence wins), so
// the two partitions together cover every distinct identifier exactly
// once.
func Partition(fetched []feed.NormalizedArticle, existing map[string]string) (need []feed.NormalizedArticle, ready []model.Article) {
	seen := make(map[string]bool, len(fetched))
	for _, na := range fetched {
		id := na.Article.GUID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if summary, ok := existing[id]; ok {
			a := na.Article
			s := summary
			a.Summary = &s
			ready = append(ready, a)
			continue
		}
		need = append(need, na)
	}
	return need, ready
}

// Merge joins the short-circuited records with the freshly enriched
// ones into the final record set for upsert.
func Merge(ready, enriched []model.Article) []model.Article {
	out := make([]model.Article, 0, len(ready)+len(enriched))
	out = append(out, ready...)
	out = append(out, enriched...)
	return out
}
