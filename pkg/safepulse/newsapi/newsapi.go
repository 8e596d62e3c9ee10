package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
)

// QuerySpec is one immutable set of search terms combined into a single
// query string.
type QuerySpec struct {
	terms []string
}

// NewQuerySpec builds a spec from the given terms, dropping blanks.
func NewQuerySpec(terms ...string) QuerySpec {
	kept := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			kept = append(kept, term)
		}
	}
	return QuerySpec{terms: kept}
}

// String joins the terms into the query string sent to the search API.
func (q QuerySpec) String() string {
	return strings.Join(q.terms, " ")
}

// IsEmpty reports whether the spec has no terms.
func (q QuerySpec) IsEmpty() bool { return len(q.terms) == 0 }

// Window is the date range a search covers.
type Window struct {
	From time.Time
	To   time.Time
}

// LastDays returns a window covering the past n days up to now.
func LastDays(n int) Window {
	now := time.Now().UTC()
	return Window{From: now.AddDate(0, 0, -n), To: now}
}

// Article is one raw search result, prior to resolution and relevance
// filtering.
type Article struct {
	Title       string
	Summary     string
	URL         string
	SourceName  string
	PublishedAt time.Time
}

// Text returns the combined title and summary used for place resolution
// and relevance classification.
func (a Article) Text() string {
	if a.Summary == "" {
		return a.Title
	}
	return a.Title + ". " + a.Summary
}

// Client calls a GNews-compatible article search endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Lang    string
	Country string
	// MaxPerQuery caps articles per request; APIs cap page size anyway.
	MaxPerQuery int

	HTTPClient *http.Client
}

type searchResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []rawArticle `json:"articles"`
}

type rawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Search issues one request for the given spec and window and decodes
// the response. Non-2xx statuses are errors; HTTP 429 wraps
// ErrRateLimited so callers can treat it as a soft failure.
func (c *Client) Search(ctx context.Context, spec QuerySpec, window Window) ([]Article, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("newsapi: base URL required")
	}
	if spec.IsEmpty() {
		return nil, fmt.Errorf("newsapi: empty query")
	}

	params := url.Values{}
	params.Set("q", spec.String())
	if c.Lang != "" {
		params.Set("lang", c.Lang)
	}
	if c.Country != "" {
		params.Set("country", c.Country)
	}
	if !window.From.IsZero() {
		params.Set("from", window.From.Format(time.RFC3339))
	}
	if !window.To.IsZero() {
		params.Set("to", window.To.Format(time.RFC3339))
	}
	if c.MaxPerQuery > 0 {
		params.Set("max", strconv.Itoa(c.MaxPerQuery))
	}
	if c.APIKey != "" {
		params.Set("apikey", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi %q: %w", spec.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("newsapi %q: %w", spec.String(), internalerr.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi %q: HTTP %d", spec.String(), resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi %q: decode: %w", spec.String(), err)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if raw.Title == "" || raw.URL == "" {
			continue
		}
		summary := raw.Description
		if summary == "" {
			summary = raw.Content
		}

		publishedAt, err := time.Parse(time.RFC3339, raw.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			Title:       stripHTML(raw.Title),
			Summary:     stripHTML(summary),
			URL:         raw.URL,
			SourceName:  raw.Source.Name,
			PublishedAt: publishedAt,
		})
	}
	return articles, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// stripHTML flattens any markup feeds smuggle into titles and
// descriptions.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
