// Command safepulse-backfill runs one pipeline cycle over a JSONL
// article dump instead of the live search API. Useful for seeding a
// store from exported data and for trying config changes offline.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/gaurvviii/safepulse/internal/feed"
	"github.com/gaurvviii/safepulse/pkg/safepulse"
	"github.com/gaurvviii/safepulse/pkg/safepulse/classify"
	"github.com/gaurvviii/safepulse/pkg/safepulse/config"
	"github.com/gaurvviii/safepulse/pkg/safepulse/entities"
	"github.com/gaurvviii/safepulse/pkg/safepulse/fetch"
	"github.com/gaurvviii/safepulse/pkg/safepulse/resolve"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store/sqlite"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "path to YAML config (builtin defaults when empty)")
		dataPath = flag.String("data", "", "input JSONL file (required)")
		dbPath   = flag.String("db", "", "store path (config store_path when empty)")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if *dataPath == "" {
		log.Error("-data required")
		os.Exit(1)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Error("load config", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dbPath == "" {
		*dbPath = cfg.StorePath
	}

	articles, err := feed.LoadJSONL(*dataPath, log)
	if err != nil {
		log.Error("load articles", "error", err)
		os.Exit(1)
	}
	log.Info("loaded articles", "path", *dataPath, "count", len(articles))

	ctx := context.Background()

	snap, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Error("open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}

	// Offline run: no external geocoder, the gazetteer and tagger
	// carry resolution on their own.
	pipeline := safepulse.New(safepulse.Options{
		Fetcher: fetch.New(feed.NewSource(articles), log),
		Resolver: &resolve.Resolver{
			Gazetteer: cfg.GazetteerTable(),
			Tagger:    entities.NewHeuristicTagger(),
			Country:   cfg.Country,
		},
		Classifier:      classify.New(cfg.KeywordList(), cfg.BoundingBox),
		Store:           store.New(snap, cfg.Capacity, log),
		QuerySpecs:      cfg.QuerySpecs(),
		WindowDays:      cfg.WindowDays,
		DefaultLocation: cfg.DefaultLocation,
		MaxDistanceKm:   cfg.MaxDistanceKm,
		Workers:         cfg.Workers,
		Logger:          log,
	})
	defer pipeline.Close()

	incidents, err := pipeline.Refresh(ctx, cfg.DefaultLocation)
	if err != nil {
		log.Error("refresh", "error", err)
		os.Exit(1)
	}
	log.Info("backfill complete", "incidents", len(incidents), "store", *dbPath)
}
