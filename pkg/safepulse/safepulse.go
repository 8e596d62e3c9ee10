// Package safepulse turns unstructured news search results into
// geographically anchored, de-duplicated safety incident records. The
// Pipeline facade wires the fan-out fetcher, the location resolution
// chain, the relevance classifier and the bounded incident store into
// one fetch-and-refresh operation.
package safepulse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gaurvviii/safepulse/pkg/safepulse/classify"
	"github.com/gaurvviii/safepulse/pkg/safepulse/fetch"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
)

// Resolver is the location resolution chain.
type Resolver interface {
	Resolve(ctx context.Context, text string) (geo.Point, bool)
}

// Pipeline is the refresh coordinator consumed by the UI layer.
type Pipeline struct {
	fetcher    *fetch.Fetcher
	resolver   Resolver
	classifier *classify.Classifier
	store      *store.Store

	specs      []newsapi.QuerySpec
	windowDays int
	defaultLoc geo.Point
	maxKm      float64
	workers    int
	log        *slog.Logger

	flight singleflight.Group
}

// Options configures a Pipeline.
type Options struct {
	Fetcher    *fetch.Fetcher
	Resolver   Resolver
	Classifier *classify.Classifier
	Store      *store.Store

	QuerySpecs []newsapi.QuerySpec
	WindowDays int

	// DefaultLocation is used when no chain stage resolves a
	// coordinate for an in-scope article.
	DefaultLocation geo.Point

	// MaxDistanceKm filters returned lists at read time; 0 disables.
	// The persisted store is never filtered.
	MaxDistanceKm float64

	// Workers bounds concurrent per-article resolution.
	Workers int

	Logger *slog.Logger
}

// New creates a Pipeline with the given dependencies.
func New(opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:    opts.Fetcher,
		resolver:   opts.Resolver,
		classifier: opts.Classifier,
		store:      opts.Store,
		specs:      opts.QuerySpecs,
		windowDays: windowDays,
		defaultLoc: opts.DefaultLocation,
		maxKm:      opts.MaxDistanceKm,
		workers:    workers,
		log:        logger,
	}
}

// Close shuts the underlying store.
func (p *Pipeline) Close() error { return p.store.Close() }

// Refresh runs one full fetch-and-merge cycle against ref and returns
// the resulting ordered incident list.
//
// Concurrent calls for the same reference point coalesce: a caller
// arriving while a refresh is in flight joins its result instead of
// starting a second store mutation. An error wrapping
// internalerr.ErrPersist means the returned list is valid but was not
// durably written. Aggregate fetch failure is returned as-is; backoff
// and retry are the caller's concern.
func (p *Pipeline) Refresh(ctx context.Context, ref geo.Point) ([]store.Incident, error) {
	key := fmt.Sprintf("%.4f,%.4f", ref.Lat, ref.Lon)
	v, err, _ := p.flight.Do(key, func() (interface{}, error) {
		return p.refresh(ctx, ref)
	})
	incidents, _ := v.([]store.Incident)
	return incidents, err
}

// Records returns the current stored list projected against ref without
// fetching anything.
func (p *Pipeline) Records(ctx context.Context, ref geo.Point) ([]store.Incident, error) {
	return p.store.Records(ctx, ref, p.maxKm)
}

func (p *Pipeline) refresh(ctx context.Context, ref geo.Point) ([]store.Incident, error) {
	articles, err := p.fetcher.FetchAll(ctx, p.specs, newsapi.LastDays(p.windowDays))
	if err != nil {
		return nil, err
	}

	incidents := p.classifyAll(ctx, articles)

	// A cancelled cycle must not reach the store; stale results are
	// discarded rather than merged.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged, err := p.store.Merge(ctx, ref, incidents)
	if err != nil && merged == nil {
		return nil, err
	}

	return p.project(merged), err
}

// classifyAll resolves and classifies articles on a bounded worker
// pool. Slot indexing keeps the output order independent of worker
// scheduling.
func (p *Pipeline) classifyAll(ctx context.Context, articles []newsapi.Article) []store.Incident {
	slots := make([]*store.Incident, len(articles))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] = p.classifyOne(ctx, articles[i])
			}
		}()
	}
	for i := range articles {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	incidents := make([]store.Incident, 0, len(articles))
	for _, inc := range slots {
		if inc != nil {
			incidents = append(incidents, *inc)
		}
	}
	return incidents
}

func (p *Pipeline) classifyOne(ctx context.Context, a newsapi.Article) *store.Incident {
	text := a.Text()

	pt, resolved := p.resolver.Resolve(ctx, text)
	if !p.classifier.InScope(text, pt, resolved) {
		p.log.Debug("dropped out-of-scope article", "url", a.URL)
		return nil
	}
	if !resolved {
		// Resolution failure is not grounds for dropping; only the
		// relevance check above is.
		pt = p.defaultLoc
	}

	inc := classify.NewIncident(a, pt)
	return &inc
}

func (p *Pipeline) project(incidents []store.Incident) []store.Incident {
	if p.maxKm <= 0 {
		return incidents
	}
	kept := make([]store.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.DistanceKm <= p.maxKm {
			kept = append(kept, inc)
		}
	}
	return kept
}
