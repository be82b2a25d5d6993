// Package database provides SQLite storage for the aggregator.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/milefeed/milefeed/internal/model"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guid TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		source TEXT NOT NULL,
		author TEXT,
		summary TEXT,
		image_url TEXT,
		category TEXT NOT NULL DEFAULT 'General',
		published_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
	CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// UpsertArticle inserts an article or updates the mutable fields of an
// existing one with the same GUID.
func (db *DB) UpsertArticle(a *model.Article) error {
	_, err := db.conn.Exec(`
		INSERT INTO articles (guid, title, url, source, author, summary, image_url, category, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guid) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			image_url = excluded.image_url,
			category = excluded.category,
			author = excluded.author`,
		a.GUID, a.Title, a.URL, a.Source, a.Author, a.Summary, a.ImageURL, a.Category,
		a.PublishedAt, time.Now().UTC())
	return err
}

// ExistingSummaries returns summaries already stored for the given GUIDs.
func (db *DB) ExistingSummaries(guids []string) (map[string]string, error) {
	summaries := make(map[string]string)
	if len(guids) == 0 {
		return summaries, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(guids)), ",")
	args := make([]any, len(guids))
	for i, g := range guids {
		args[i] = g
	}

	rows, err := db.conn.Query(
		"SELECT guid, summary FROM articles WHERE summary IS NOT NULL AND guid IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var guid, summary string
		if err := rows.Scan(&guid, &summary); err != nil {
			return nil, err
		}
		summaries[guid] = summary
	}
	return summaries, rows.Err()
}

// GetArticles returns a page of articles newest first, with the total count.
func (db *DB) GetArticles(f ArticleFilter) ([]model.Article, int, error) {
	var conds []string
	var args []any
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM articles"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, guid, title, url, source, author, summary, image_url, category, published_at, created_at
		FROM articles` + where + " ORDER BY published_at DESC LIMIT ? OFFSET ?"
	rows, err := db.conn.Query(query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var a model.Article
		var author, summary, imageURL sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.GUID, &a.Title, &a.URL, &a.Source,
			&author, &summary, &imageURL, &a.Category, &a.PublishedAt, &createdAt); err != nil {
			return nil, err
		}
		if author.Valid {
			a.Author = &author.String
		}
		if summary.Valid {
			a.Summary = &summary.String
		}
		if imageURL.Valid {
			a.ImageURL = &imageURL.String
		}
		if createdAt.Valid {
			t := createdAt.Time
			a.CreatedAt = &t
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
