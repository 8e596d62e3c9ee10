// Command safepulse runs the incident refresh pipeline: fetch news for
// the configured queries, resolve and classify the articles, merge them
// into the persistent incident store, and repeat on an interval.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaurvviii/safepulse/pkg/safepulse"
	"github.com/gaurvviii/safepulse/pkg/safepulse/classify"
	"github.com/gaurvviii/safepulse/pkg/safepulse/config"
	"github.com/gaurvviii/safepulse/pkg/safepulse/entities"
	"github.com/gaurvviii/safepulse/pkg/safepulse/fetch"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geocode"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
	"github.com/gaurvviii/safepulse/pkg/safepulse/resolve"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store/sqlite"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "path to YAML config (builtin defaults when empty)")
		interval    = flag.Duration("interval", 15*time.Minute, "refresh interval")
		once        = flag.Bool("once", false, "run a single refresh cycle then exit")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	)
	flag.Parse()

	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Error("load config", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	apiKey := os.Getenv("NEWS_API_KEY")
	if apiKey == "" {
		log.Error("NEWS_API_KEY not set")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	snap, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		log.Error("open store", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}

	geocoder := geocode.NewLimited(&geocode.Client{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
	}, geocode.LimitedConfig{
		MinInterval: cfg.Geocoder.MinInterval,
		CallTimeout: cfg.Geocoder.CallTimeout,
		Logger:      log,
	})

	pipeline := safepulse.New(safepulse.Options{
		Fetcher: fetch.New(&newsapi.Client{
			BaseURL:     cfg.News.BaseURL,
			APIKey:      apiKey,
			Lang:        cfg.News.Lang,
			Country:     cfg.News.Country,
			MaxPerQuery: cfg.News.MaxPerQuery,
		}, log),
		Resolver: &resolve.Resolver{
			Gazetteer: cfg.GazetteerTable(),
			Tagger:    entities.NewHeuristicTagger(),
			Geocoder:  geocoder,
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

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info("serving metrics", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server", "error", err)
			}
		}()
	}

	ref := cfg.DefaultLocation

	runOnce := func() {
		start := time.Now()
		incidents, err := pipeline.Refresh(ctx, ref)
		if err != nil {
			log.Warn("refresh", "error", err, "incidents", len(incidents))
		}
		log.Info("cycle finished",
			"incidents", len(incidents),
			"elapsed", time.Since(start).Truncate(time.Millisecond).String())
	}

	log.Info("safepulse starting",
		"queries", len(cfg.QuerySpecs()),
		"capacity", cfg.Capacity,
		"interval", interval.String())

	runOnce()
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("stopping", "reason", ctx.Err().Error())
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
