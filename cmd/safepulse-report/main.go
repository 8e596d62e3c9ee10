// Command safepulse-report prints a JSON summary of a persisted
// incident store: totals, per-source counts, and the incidents nearest
// to a reference point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store/sqlite"
)

type report struct {
	TotalIncidents int           `json:"total_incidents"`
	Oldest         time.Time     `json:"oldest,omitzero"`
	Newest         time.Time     `json:"newest,omitzero"`
	BySource       []sourceCount `json:"by_source"`
	Nearest        []nearbyEntry `json:"nearest"`
}

type sourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type nearbyEntry struct {
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url"`
	DistanceKm float64   `json:"distance_km"`
	Published  time.Time `json:"published_at"`
}

func main() {
	var (
		dbPath = flag.String("db", "safepulse.db", "store path")
		lat    = flag.Float64("lat", 28.6139, "reference latitude")
		lon    = flag.Float64("lon", 77.2090, "reference longitude")
		limit  = flag.Int("limit", 10, "nearest incidents to include")
	)
	flag.Parse()

	ctx := context.Background()

	snap, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer snap.Close()

	incidents, err := snap.Load(ctx)
	if err != nil {
		log.Fatalf("load incidents: %v", err)
	}

	ref := geo.Point{Lat: *lat, Lon: *lon}
	rep := report{TotalIncidents: len(incidents)}

	bySource := make(map[string]int)
	for i := range incidents {
		incidents[i].DistanceKm = geo.DistanceKm(ref, incidents[i].Coordinate)
		bySource[incidents[i].SourceName]++

		ts := incidents[i].PublishedAt
		if ts.IsZero() {
			continue
		}
		if rep.Oldest.IsZero() || ts.Before(rep.Oldest) {
			rep.Oldest = ts
		}
		if ts.After(rep.Newest) {
			rep.Newest = ts
		}
	}

	for source, count := range bySource {
		rep.BySource = append(rep.BySource, sourceCount{Source: source, Count: count})
	}
	sort.Slice(rep.BySource, func(i, j int) bool {
		if rep.BySource[i].Count != rep.BySource[j].Count {
			return rep.BySource[i].Count > rep.BySource[j].Count
		}
		return rep.BySource[i].Source < rep.BySource[j].Source
	})

	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].DistanceKm < incidents[j].DistanceKm
	})
	if *limit > 0 && len(incidents) > *limit {
		incidents = incidents[:*limit]
	}
	for _, inc := range incidents {
		rep.Nearest = append(rep.Nearest, nearbyEntry{
			Title:      inc.Title,
			SourceURL:  inc.SourceURL,
			DistanceKm: inc.DistanceKm,
			Published:  inc.PublishedAt,
		})
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}
