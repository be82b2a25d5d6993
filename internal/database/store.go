// Package database provides storage backends for the aggregator.
package database

import (
	"github.com/milefeed/milefeed/internal/model"
)

// ArticleFilter narrows a paginated article listing. Empty Source or
// Category means no filter on that field.
type ArticleFilter struct {
	Source   string
	Category string
	Limit    int
	Offset   int
}

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// UpsertArticle inserts or updates an article keyed on GUID. On
	// conflict the title, summary, image URL, category, and author are
	// overwritten; the GUID, publish date, and created-at stay as first
	// inserted.
	UpsertArticle(a *model.Article) error

	// ExistingSummaries returns the subset of the given GUIDs that
	// already have a non-null summary, mapped to the summary text.
	ExistingSummaries(guids []string) (map[string]string, error)

	// GetArticles returns a filtered page of articles ordered by
	// publish date descending, plus the total count for pagination.
	GetArticles(f ArticleFilter) ([]model.Article, int, error)
}
