// Package config loads service configuration from the environment and
// an optional YAML sources file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/milefeed/milefeed/internal/categorize"
	"github.com/milefeed/milefeed/internal/model"
)

// Sources file validation errors.
var (
	ErrNoSources         = errors.New("at least one source is required")
	ErrSourceMissingName = errors.New("source name is required")
	ErrSourceMissingURL  = errors.New("source url is required")
	ErrUnknownPreset     = errors.New(`preset must be "default" or "topical"`)
)

// Config holds the environment-driven settings.
type Config struct {
	Addr          string // LISTEN_ADDR
	DatabaseURL   string // DATABASE_URL; empty selects SQLite
	DatabasePath  string // DATABASE_PATH, SQLite file
	OpenAIKey     string // OPENAI_API_KEY; empty disables enrichment
	OpenAIModel   string // OPENAI_MODEL
	RefreshSecret string // CRON_SECRET guarding /api/refresh
	SourcesFile   string // SOURCES_FILE, optional YAML
}

// FromEnv reads configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		Addr:          getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabasePath:  getenv("DATABASE_PATH", "milefeed.db"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		RefreshSecret: os.Getenv("CRON_SECRET"),
		SourcesFile:   os.Getenv("SOURCES_FILE"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DefaultSources are the publishers fetched when no sources file is
// configured.
func DefaultSources() []model.Source {
	return []model.Source{
		{Name: "The Points Guy", URL: "https://thepointsguy.com/feed/"},
		{Name: "Skift", URL: "https://skift.com/feed/"},
		{Name: "One Mile at a Time", URL: "https://onemileatatime.com/feed/"},
	}
}

// SourcesFile is the optional YAML file selecting the publishers and
// the categorizer preset.
type SourcesFile struct {
	Preset  string         `yaml:"preset"`
	Sources []model.Source `yaml:"sources"`
}

// LoadSources reads and validates a sources file. A missing preset
// falls back to the default preset.
func LoadSources(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	if sf.Preset == "" {
		sf.Preset = categorize.PresetDefault
	}
	if err := sf.validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

func (sf *SourcesFile) validate() error {
	if categorize.ForPreset(sf.Preset) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, sf.Preset)
	}
	if len(sf.Sources) == 0 {
		return ErrNoSources
	}
	for i, s := range sf.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: %w", i, ErrSourceMissingName)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: %w", s.Name, ErrSourceMissingURL)
		}
	}
	return nil
}
