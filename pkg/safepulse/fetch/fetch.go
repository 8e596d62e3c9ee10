package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gaurvviii/safepulse/internal/metrics"
	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

// Searcher issues one search request per query spec.
type Searcher interface {
	Search(ctx context.Context, spec newsapi.QuerySpec, window newsapi.Window) ([]newsapi.Article, error)
}

// Fetcher fans out one request per query spec and joins on all of them.
// A single query's failure never aborts the others; only total failure
// is reported as an error.
type Fetcher struct {
	client Searcher
	log    *slog.Logger
}

// New creates a fetcher. logger may be nil.
func New(client Searcher, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, log: logger}
}

// FetchAll runs every spec concurrently and waits for all of them to
// finish. It returns the concatenation of all successfully decoded
// articles, in spec order. Rate-limit responses count as soft failures
// and are not retried within the cycle. When every query fails the
// returned error wraps internalerr.ErrAllQueriesFailed.
func (f *Fetcher) FetchAll(ctx context.Context, specs []newsapi.QuerySpec, window newsapi.Window) ([]newsapi.Article, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("fetch: no query specs")
	}

	results := make([][]newsapi.Article, len(specs))
	errs := make([]error, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec newsapi.QuerySpec) {
			defer wg.Done()
			metrics.QueriesTotal.Inc()
			articles, err := f.client.Search(ctx, spec, window)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = articles
		}(i, spec)
	}
	wg.Wait()

	var out []newsapi.Article
	failed := 0
	for i := range specs {
		if errs[i] != nil {
			failed++
			kind := "error"
			if errors.Is(errs[i], internalerr.ErrRateLimited) {
				kind = "rate_limited"
			}
			metrics.QueryFailuresTotal.WithLabelValues(kind).Inc()
			f.log.Warn("query failed", "query", specs[i].String(), "error", errs[i])
			continue
		}
		out = append(out, results[i]...)
	}

	if failed == len(specs) {
		return nil, fmt.Errorf("fetch: %d/%d queries failed: %w", failed, len(specs), internalerr.ErrAllQueriesFailed)
	}
	return out, nil
}
