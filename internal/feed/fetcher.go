package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/milefeed/milefeed/internal/model"
)

// DefaultSourceTimeout bounds one source fetch. A slow source times
// out on its own without delaying siblings.
const DefaultSourceTimeout = 30 * time.Second

// Fetcher fetches every configured source concurrently and normalizes
// the results. One source failing never discards another's articles.
type Fetcher struct {
	parser  *gofeed.Parser
	sources []model.Source
	cat     Categorizer
	timeout time.Duration
}

// NewFetcher creates a fetcher over a fixed source list.
func NewFetcher(sources []model.Source, cat Categorizer) *Fetcher {
	return &Fetcher{
		parser:  gofeed.NewParser(),
		sources: sources,
		cat:     cat,
		timeout: DefaultSourceTimeout,
	}
}

// FetchResult aggregates one run's fetch stage: all normalized
// articles from sources that succeeded, plus one error entry per
// source that failed.
type FetchResult struct {
	Articles []NormalizedArticle
	Errors   []model.SourceError
}

// sourceResult is the settled outcome of a single source fetch.
type sourceResult struct {
	source   string
	articles []NormalizedArticle
	err      error
}

// FetchAll fetches all sources concurrently and joins the settled
// outcomes. It never returns an error: per-source failures are
// reported in the result.
func (f *Fetcher) FetchAll(ctx context.Context) FetchResult {
	var wg sync.WaitGroup
	resultChan := make(chan sourceResult, len(f.sources))

	for _, src := range f.sources {
		wg.Add(1)
		go func(src model.Source) {
			defer wg.Done()
			articles, err := f.fetchSource(ctx, src)
			resultChan <- sourceResult{source: src.Name, articles: articles, err: err}
		}(src)
	}

	wg.Wait()
	close(resultChan)

	// Join results keyed by configured order so output is stable.
	bySource := make(map[string]sourceResult, len(f.sources))
	for res := range resultChan {
		bySource[res.source] = res
	}

	var out FetchResult
	for _, src := range f.sources {
		res := bySource[src.Name]
		if res.err != nil {
			msg := res.err.Error()
			if len(msg) > 200 {
				msg = msg[:200]
			}
			out.Errors = append(out.Errors, model.SourceError{Source: src.Name, Error: msg})
			continue
		}
		out.Articles = append(out.Articles, res.articles...)
	}
	return out
}

// fetchSource fetches and normalizes one source under its own timeout.
func (f *Fetcher) fetchSource(ctx context.Context, src model.Source) ([]NormalizedArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	now := time.Now().UTC()
	articles := make([]NormalizedArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, Normalize(item, src.Name, f.cat, now))
	}
	return articles, nil
}
