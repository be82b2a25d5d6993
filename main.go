package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/milefeed/milefeed/internal/categorize"
	"github.com/milefeed/milefeed/internal/config"
	"github.com/milefeed/milefeed/internal/database"
	"github.com/milefeed/milefeed/internal/feed"
	"github.com/milefeed/milefeed/internal/server"
	"github.com/milefeed/milefeed/internal/summarize"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	sources := config.DefaultSources()
	preset := categorize.PresetDefault
	if cfg.SourcesFile != "" {
		sf, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			log.Fatalf("Sources config: %v", err)
		}
		sources = sf.Sources
		preset = sf.Preset
	}
	classifier := categorize.ForPreset(preset)

	var db database.Store
	var err error
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgres(cfg.DatabaseURL)
	} else {
		db, err = database.New(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatalf("Database: %v", err)
	}
	defer db.Close()
	log.Printf("Using %s database, %d sources, %q preset", db.DatabaseType(), len(sources), preset)

	var client summarize.Client
	if cfg.OpenAIKey != "" {
		client = summarize.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	} else {
		log.Printf("OPENAI_API_KEY not set, summarization disabled")
	}

	srv := server.New(db,
		feed.NewFetcher(sources, classifier),
		summarize.NewBatcher(client),
		server.Options{
			Sources:       sources,
			Categories:    classifier.Categories(),
			RefreshSecret: cfg.RefreshSecret,
		})

	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatalf("Server: %v", err)
	}
}
