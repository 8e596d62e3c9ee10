package feed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

func writeJSONL(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.jsonl")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadJSONL(t *testing.T) {
	path := writeJSONL(t, `
{"url":"https://example.com/a","title":"Theft in Pune","summary":"Bike stolen.","source_name":"Example","published_at":"2024-03-01T08:00:00Z"}
not json at all
{"url":"","title":"missing url"}
{"url":"https://example.com/b","title":"Robbery in Delhi"}
`)

	articles, err := LoadJSONL(path, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2 (malformed and incomplete lines skipped)", len(articles))
	}
	if articles[0].Title != "Theft in Pune" || articles[0].SourceName != "Example" {
		t.Errorf("fields not carried over: %+v", articles[0])
	}
	if articles[0].PublishedAt.IsZero() {
		t.Error("publish time lost")
	}
}

func TestLoadJSONLEmpty(t *testing.T) {
	path := writeJSONL(t, "\n\n")
	if _, err := LoadJSONL(path, quiet()); err == nil {
		t.Error("expected error for file without valid articles")
	}
}

func TestSourceSearch(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	src := NewSource([]newsapi.Article{
		{Title: "Chain snatching in Bengaluru", URL: "https://e/a", PublishedAt: ts},
		{Title: "Crime wave hits Bengaluru suburbs", URL: "https://e/b", PublishedAt: ts},
		{Title: "Crime in Delhi", URL: "https://e/c", PublishedAt: ts},
		{Title: "Old crime report from Bengaluru", URL: "https://e/d", PublishedAt: ts.AddDate(0, -2, 0)},
		{Title: "Undated crime note, Bengaluru", URL: "https://e/e"},
	})

	window := newsapi.Window{From: ts.AddDate(0, 0, -7), To: ts.AddDate(0, 0, 1)}
	got, err := src.Search(context.Background(), newsapi.NewQuerySpec("crime", "Bengaluru"), window)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// All terms must match, the window applies, undated articles pass.
	want := []string{"Crime wave hits Bengaluru suburbs", "Undated crime note, Bengaluru"}
	if len(got) != len(want) {
		t.Fatalf("got %d articles, want %d: %+v", len(got), len(want), got)
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("article %d = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestSourceSearchCancelled(t *testing.T) {
	src := NewSource([]newsapi.Article{{Title: "x", URL: "https://e/x"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Search(ctx, newsapi.NewQuerySpec("x"), newsapi.LastDays(7)); err == nil {
		t.Error("expected error from cancelled context")
	}
}
