package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

// scriptedSearcher fails or succeeds per query string.
type scriptedSearcher struct {
	mu       sync.Mutex
	calls    int
	articles map[string][]newsapi.Article
	failures map[string]error
}

func (s *scriptedSearcher) Search(ctx context.Context, spec newsapi.QuerySpec, window newsapi.Window) ([]newsapi.Article, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err, ok := s.failures[spec.String()]; ok {
		return nil, err
	}
	return s.articles[spec.String()], nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func art(title string) newsapi.Article {
	return newsapi.Article{Title: title, URL: "https://example.com/" + title}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	searcher := &scriptedSearcher{
		articles: map[string][]newsapi.Article{
			"q1": {art("a1")},
			"q3": {art("a3"), art("a3b")},
			"q4": {art("a4")},
		},
		failures: map[string]error{
			"q2": fmt.Errorf("HTTP 500"),
		},
	}
	f := New(searcher, quiet())

	specs := []newsapi.QuerySpec{
		newsapi.NewQuerySpec("q1"),
		newsapi.NewQuerySpec("q2"),
		newsapi.NewQuerySpec("q3"),
		newsapi.NewQuerySpec("q4"),
	}

	articles, err := f.FetchAll(context.Background(), specs, newsapi.Window{})
	if err != nil {
		t.Fatalf("one failing query must not fail the batch: %v", err)
	}
	if len(articles) != 4 {
		t.Fatalf("got %d articles, want 4", len(articles))
	}
	// Results come back in spec order despite concurrent execution.
	if articles[0].Title != "a1" || articles[1].Title != "a3" || articles[3].Title != "a4" {
		t.Errorf("unexpected order: %v", articles)
	}
	if searcher.calls != 4 {
		t.Errorf("searcher called %d times, want 4", searcher.calls)
	}
}

func TestFetchAllAggregateFailure(t *testing.T) {
	searcher := &scriptedSearcher{
		failures: map[string]error{
			"q1": fmt.Errorf("HTTP 500"),
			"q2": fmt.Errorf("connection refused"),
		},
	}
	f := New(searcher, quiet())

	specs := []newsapi.QuerySpec{newsapi.NewQuerySpec("q1"), newsapi.NewQuerySpec("q2")}
	_, err := f.FetchAll(context.Background(), specs, newsapi.Window{})
	if !errors.Is(err, internalerr.ErrAllQueriesFailed) {
		t.Errorf("err = %v, want ErrAllQueriesFailed", err)
	}
}

func TestFetchAllRateLimitIsSoftFailure(t *testing.T) {
	searcher := &scriptedSearcher{
		articles: map[string][]newsapi.Article{"q1": {art("a1")}},
		failures: map[string]error{
			"q2": fmt.Errorf("search: %w", internalerr.ErrRateLimited),
		},
	}
	f := New(searcher, quiet())

	specs := []newsapi.QuerySpec{newsapi.NewQuerySpec("q1"), newsapi.NewQuerySpec("q2")}
	articles, err := f.FetchAll(context.Background(), specs, newsapi.Window{})
	if err != nil {
		t.Fatalf("429 on one query must not fail the batch: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1", len(articles))
	}
	if searcher.calls != 2 {
		t.Errorf("rate-limited query retried within cycle: %d calls", searcher.calls)
	}
}

func TestFetchAllEmptySuccess(t *testing.T) {
	searcher := &scriptedSearcher{}
	f := New(searcher, quiet())

	articles, err := f.FetchAll(context.Background(),
		[]newsapi.QuerySpec{newsapi.NewQuerySpec("q1")}, newsapi.Window{})
	if err != nil {
		t.Fatalf("zero articles is a success, not a failure: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles", len(articles))
	}
}

func TestFetchAllNoSpecs(t *testing.T) {
	f := New(&scriptedSearcher{}, quiet())
	if _, err := f.FetchAll(context.Background(), nil, newsapi.Window{}); err == nil {
		t.Error("expected error for empty spec list")
	}
}
