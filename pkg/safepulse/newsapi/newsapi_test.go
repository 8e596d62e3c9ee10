package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
)

func TestQuerySpecString(t *testing.T) {
	tests := []struct {
		terms []string
		want  string
	}{
		{[]string{"crime", "Delhi"}, "crime Delhi"},
		{[]string{" assault ", "", "Mumbai"}, "assault Mumbai"},
		{nil, ""},
	}
	for _, tt := range tests {
		spec := NewQuerySpec(tt.terms...)
		if got := spec.String(); got != tt.want {
			t.Errorf("NewQuerySpec(%v).String() = %q, want %q", tt.terms, got, tt.want)
		}
	}

	if !NewQuerySpec(" ", "").IsEmpty() {
		t.Error("blank-only spec should be empty")
	}
}

func TestSearchDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "crime Bengaluru" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("lang") != "en" || q.Get("country") != "in" {
			t.Errorf("lang/country = %q/%q", q.Get("lang"), q.Get("country"))
		}
		if q.Get("from") == "" || q.Get("to") == "" {
			t.Error("missing date window parameters")
		}
		w.Write([]byte(`{
			"totalArticles": 2,
			"articles": [
				{
					"title": "Two held for <b>robbery</b>",
					"description": "Police arrested two men in Bengaluru.",
					"url": "https://example.com/a",
					"publishedAt": "2024-03-01T10:00:00Z",
					"source": {"name": "The Example Times"}
				},
				{
					"title": "Snatching case",
					"content": "Fallback to content field.",
					"url": "https://example.com/b",
					"publishedAt": "not-a-date",
					"source": {"name": "Example Daily"}
				},
				{
					"title": "",
					"url": "https://example.com/skipped"
				}
			]
		}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Lang: "en", Country: "in"}
	articles, err := c.Search(context.Background(), NewQuerySpec("crime", "Bengaluru"), LastDays(7))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "Two held for robbery" {
		t.Errorf("title not HTML-stripped: %q", articles[0].Title)
	}
	if articles[0].SourceName != "The Example Times" {
		t.Errorf("source = %q", articles[0].SourceName)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !articles[0].PublishedAt.Equal(want) {
		t.Errorf("publishedAt = %v", articles[0].PublishedAt)
	}
	if articles[1].Summary != "Fallback to content field." {
		t.Errorf("summary = %q, want content fallback", articles[1].Summary)
	}
	if !articles[1].PublishedAt.IsZero() {
		t.Errorf("unparseable publishedAt should be zero, got %v", articles[1].PublishedAt)
	}
}

func TestSearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.Search(context.Background(), NewQuerySpec("crime"), Window{})
	if !errors.Is(err, internalerr.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	if _, err := c.Search(context.Background(), NewQuerySpec("crime"), Window{}); err == nil {
		t.Error("expected error on HTTP 500")
	}
}

func TestSearchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles": [`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	if _, err := c.Search(context.Background(), NewQuerySpec("crime"), Window{}); err == nil {
		t.Error("expected decode error")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := &Client{BaseURL: "http://localhost"}
	if _, err := c.Search(context.Background(), NewQuerySpec(), Window{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestArticleText(t *testing.T) {
	a := Article{Title: "Theft in Pune", Summary: "Bike stolen."}
	if got := a.Text(); got != "Theft in Pune. Bike stolen." {
		t.Errorf("Text() = %q", got)
	}
	if got := (Article{Title: "Theft"}).Text(); got != "Theft" {
		t.Errorf("Text() without summary = %q", got)
	}
}
