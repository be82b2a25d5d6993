package summarize

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/milefeed/milefeed/internal/feed"
	"github.com/milefeed/milefeed/internal/model"
)

// Batch settings. Entries within a batch run concurrently; batches run
// one after another to stay inside the provider's rate limits.
const (
	DefaultBatchSize      = 10
	DefaultRequestTimeout = 30 * time.Second
)

// Batcher enriches articles through a Client in bounded batches. A nil
// client disables enrichment: records pass through with nil summaries.
type Batcher struct {
	client    Client
	batchSize int
	timeout   time.Duration
}

// NewBatcher creates a batcher with default batch size and per-request
// timeout.
func NewBatcher(client Client) *Batcher {
	return &Batcher{
		client:    client,
		batchSize: DefaultBatchSize,
		timeout:   DefaultRequestTimeout,
	}
}

// Run summarizes every record and returns the augmented articles plus
// the count that actually got a summary. A failed or empty provider
// response leaves that record's summary nil; it never aborts the batch.
func (b *Batcher) Run(ctx context.Context, items []feed.NormalizedArticle) ([]model.Article, int) {
	out := make([]model.Article, len(items))
	for i, na := range items {
		out[i] = na.Article
	}
	if b.client == nil || len(items) == 0 {
		return out, 0
	}

	for start := 0; start < len(items); start += b.batchSize {
		end := min(start+b.batchSize, len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
				defer cancel()

				summary, err := b.client.Summarize(reqCtx, items[i].Article.Title, items[i].Excerpt)
				if err != nil {
					log.Printf("Summary failed for %q: %v", items[i].Article.Title, err)
					return
				}
				summary = strings.TrimSpace(summary)
				if summary == "" {
					return
				}
				out[i].Summary = &summary
			}(i)
		}
		wg.Wait()
	}

	summarized := 0
	for i := range out {
		if out[i].Summary != nil {
			summarized++
		}
	}
	return out, summarized
}
