package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/milefeed/milefeed/internal/categorize"
	"github.com/milefeed/milefeed/internal/database"
	"github.com/milefeed/milefeed/internal/feed"
	"github.com/milefeed/milefeed/internal/model"
	"github.com/milefeed/milefeed/internal/summarize"
)

// fakeStore is an in-memory Store keyed on GUID.
type fakeStore struct {
	mu       sync.Mutex
	articles map[string]model.Article
	fail     bool
}

var _ database.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{articles: make(map[string]model.Article)}
}

func (f *fakeStore) Close() error         { return nil }
func (f *fakeStore) DatabaseType() string { return "Fake" }

func (f *fakeStore) UpsertArticle(a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("store down")
	}
	f.articles[a.GUID] = *a
	return nil
}

func (f *fakeStore) ExistingSummaries(guids []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("store down")
	}
	out := make(map[string]string)
	for _, g := range guids {
		if a, ok := f.articles[g]; ok && a.Summary != nil {
			out[g] = *a.Summary
		}
	}
	return out, nil
}

func (f *fakeStore) GetArticles(filter database.ArticleFilter) ([]model.Article, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Article
	for _, a := range f.articles {
		out = append(out, a)
	}
	return out, len(out), nil
}

// countingClient summarizes everything and counts calls.
type countingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *countingClient) Summarize(ctx context.Context, title, excerpt string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return "One sentence about " + title, nil
}

func feedServer(t *testing.T, items int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>F</title><link>http://f</link><description>f</description>`
		for i := 0; i < items; i++ {
			body += fmt.Sprintf(`<item><title>Hotel story %d</title><link>http://f/%d</link><guid>f-%d</guid><pubDate>Fri, 01 Mar 2024 12:00:00 GMT</pubDate><description>text</description></item>`, i, i, i)
		}
		fmt.Fprint(w, body+`</channel></rss>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, db database.Store, client summarize.Client, sources []model.Source, secret string) *Server {
	t.Helper()
	classifier := categorize.ForPreset(categorize.PresetDefault)
	return New(db,
		feed.NewFetcher(sources, classifier),
		summarize.NewBatcher(client),
		Options{
			Sources:       sources,
			Categories:    classifier.Categories(),
			RefreshSecret: secret,
		})
}

func TestRefreshRequiresSecret(t *testing.T) {
	db := newFakeStore()
	srv := newTestServer(t, db, nil, nil, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: status = %d, want 401", rec.Code)
	}
	if len(db.articles) != 0 {
		t.Error("rejected refresh must not touch the store")
	}
}

func TestRefreshRun(t *testing.T) {
	feedSrv := feedServer(t, 3)
	db := newFakeStore()
	client := &countingClient{}
	srv := newTestServer(t, db, client,
		[]model.Source{{Name: "Skift", URL: feedSrv.URL}}, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Success    bool                `json:"success"`
		Fetched    int                 `json:"fetched"`
		Upserted   int                 `json:"upserted"`
		Summarized int                 `json:"summarized"`
		Errors     []model.SourceError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Fetched != 3 || resp.Upserted != 3 || resp.Summarized != 3 {
		t.Errorf("counts = %+v", resp)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("errors = %v", resp.Errors)
	}
	if len(db.articles) != 3 {
		t.Errorf("store has %d articles, want 3", len(db.articles))
	}
	for _, a := range db.articles {
		if a.Summary == nil {
			t.Errorf("article %s not summarized", a.GUID)
		}
	}
}

func TestRefreshSkipsAlreadySummarized(t *testing.T) {
	feedSrv := feedServer(t, 3)
	db := newFakeStore()
	stored := "stored summary"
	db.articles["f-1"] = model.Article{GUID: "f-1", Summary: &stored}

	client := &countingClient{}
	srv := newTestServer(t, db, client,
		[]model.Source{{Name: "Skift", URL: feedSrv.URL}}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if client.calls != 2 {
		t.Errorf("provider called %d times, want 2", client.calls)
	}
	if got := db.articles["f-1"].Summary; got == nil || *got != stored {
		t.Errorf("stored summary was not preserved: %v", got)
	}
}

func TestRefreshReportsPartialFailure(t *testing.T) {
	feedSrv := feedServer(t, 2)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	db := newFakeStore()
	srv := newTestServer(t, db, &countingClient{}, []model.Source{
		{Name: "Skift", URL: feedSrv.URL},
		{Name: "The Points Guy", URL: broken.URL},
	}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on partial failure", rec.Code)
	}

	var resp struct {
		Success bool                `json:"success"`
		Errors  []model.SourceError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("partial failure should still report success")
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Source != "The Points Guy" {
		t.Errorf("errors = %v", resp.Errors)
	}
	if len(db.articles) != 2 {
		t.Errorf("store has %d articles, want 2", len(db.articles))
	}
}

func TestRefreshStoreFailureIsFatal(t *testing.T) {
	feedSrv := feedServer(t, 1)
	db := newFakeStore()
	db.fail = true
	srv := newTestServer(t, db, nil, []model.Source{{Name: "Skift", URL: feedSrv.URL}}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestFeedEndpoint(t *testing.T) {
	db := newFakeStore()
	db.articles["g1"] = model.Article{GUID: "g1", Title: "A", Source: "Skift",
		Category: model.CategoryGeneral, PublishedAt: time.Now().UTC()}

	srv := newTestServer(t, db, nil, nil, "")
	req := httptest.NewRequest(http.MethodGet, "/api/feed?limit=500", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Articles []model.Article `json:"articles"`
		Total    int             `json:"total"`
		Limit    int             `json:"limit"`
		Offset   int             `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Articles) != 1 {
		t.Errorf("total = %d, articles = %d", resp.Total, len(resp.Articles))
	}
	if resp.Limit != MaxFeedLimit {
		t.Errorf("limit = %d, want clamped to %d", resp.Limit, MaxFeedLimit)
	}
}

func TestSourcesEndpoint(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), nil,
		[]model.Source{{Name: "Skift", URL: "http://skift"}}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Sources    []string `json:"sources"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "Skift" {
		t.Errorf("sources = %v", resp.Sources)
	}
	if len(resp.Categories) != 4 {
		t.Errorf("categories = %v", resp.Categories)
	}
}
