// Package server provides the HTTP server and handlers.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/milefeed/milefeed/internal/database"
	"github.com/milefeed/milefeed/internal/feed"
	"github.com/milefeed/milefeed/internal/model"
	"github.com/milefeed/milefeed/internal/summarize"
)

// Listing limits for /api/feed.
const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 200
)

// RefreshTimeout bounds one full ingestion run.
const RefreshTimeout = 5 * time.Minute

// Options holds the static server configuration.
type Options struct {
	// Sources are the configured publishers, exposed for filter UIs.
	Sources []model.Source
	// Categories is the active category set.
	Categories []string
	// RefreshSecret guards /api/refresh; empty disables the guard.
	RefreshSecret string
}

// Server is the main HTTP server.
type Server struct {
	db      database.Store
	fetcher *feed.Fetcher
	batcher *summarize.Batcher
	opts    Options
	router  chi.Router
}

// New creates a new server.
func New(db database.Store, fetcher *feed.Fetcher, batcher *summarize.Batcher, opts Options) *Server {
	s := &Server{
		db:      db,
		fetcher: fetcher,
		batcher: batcher,
		opts:    opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		// Cron schedulers send GET; manual triggers POST.
		r.Get("/refresh", s.handleRefresh)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/feed", s.handleFeed)
		r.Get("/sources", s.handleSources)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server.
func (s *Server) Start(addr string) error {
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// --- API Handlers ---

// handleRefresh runs one ingestion: fetch all sources, skip articles
// that already have a stored summary, enrich the rest, upsert
// everything. Partial source failure is reported, not fatal.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if secret := s.opts.RefreshSecret; secret != "" {
		if r.Header.Get("Authorization") != "Bearer "+secret {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), RefreshTimeout)
	defer cancel()

	result := s.fetcher.FetchAll(ctx)
	for _, e := range result.Errors {
		log.Printf("Fetch failed for %s: %s", e.Source, e.Error)
	}

	guids := make([]string, 0, len(result.Articles))
	for _, na := range result.Articles {
		guids = append(guids, na.Article.GUID)
	}
	existing, err := s.db.ExistingSummaries(guids)
	if err != nil {
		log.Printf("Summary lookup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to refresh feeds"})
		return
	}

	need, ready := summarize.Partition(result.Articles, existing)
	enriched, summarized := s.batcher.Run(ctx, need)
	merged := summarize.Merge(ready, enriched)

	for i := range merged {
		if err := s.db.UpsertArticle(&merged[i]); err != nil {
			log.Printf("Upsert error for %s: %v", merged[i].GUID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to refresh feeds"})
			return
		}
	}

	log.Printf("Refresh: fetched=%d upserted=%d summarized=%d errors=%d",
		len(result.Articles), len(merged), summarized, len(result.Errors))

	errs := result.Errors
	if errs == nil {
		errs = []model.SourceError{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"fetched":    len(result.Articles),
		"upserted":   len(merged),
		"summarized": summarized,
		"errors":     errs,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// handleFeed serves a filtered, paginated article listing.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultFeedLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, MaxFeedLimit)
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}

	articles, total, err := s.db.GetArticles(database.ArticleFilter{
		Source:   q.Get("source"),
		Category: q.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("Feed query error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to fetch articles"})
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleSources serves the configured source names and category set
// for building filters.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.opts.Sources))
	for _, src := range s.opts.Sources {
		names = append(names, src.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sources":    names,
		"categories": s.opts.Categories,
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Response encode error: %v", err)
	}
}
