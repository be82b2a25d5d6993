// Package model defines shared data structures.
package model

import "time"

// Category values assigned by the categorizer.
const (
	CategoryAirline = "Airline"
	CategoryHotel   = "Hotel"
	CategoryBonus   = "Bonus"
	CategoryGeneral = "General"
)

// Source is a configured feed publisher.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Article is the canonical record produced for one feed item.
// GUID is the dedup key; the store upserts on it.
type Article struct {
	ID          int64      `json:"id"`
	GUID        string     `json:"guid"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Author      *string    `json:"author"`
	Summary     *string    `json:"summary"` // nil until enrichment
	ImageURL    *string    `json:"imageUrl"`
	Category    string     `json:"category"`
	PublishedAt time.Time  `json:"publishedAt"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// SourceError records one failed source fetch within a run.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
