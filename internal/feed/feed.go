// Package feed loads articles from JSONL dumps so the pipeline can be
// run offline, without a search API key.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

type rawItem struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	SourceName  string    `json:"source_name"`
	PublishedAt time.Time `json:"published_at"`
}

// LoadJSONL reads one article per line from path. Malformed lines are
// logged and skipped; an empty result is an error.
func LoadJSONL(path string, log *slog.Logger) ([]newsapi.Article, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var articles []newsapi.Article
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var item rawItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Warn("skipping malformed line", "path", path, "line", i+1, "error", err)
			continue
		}
		if item.Title == "" || item.URL == "" {
			continue
		}
		articles = append(articles, newsapi.Article{
			Title:       item.Title,
			Summary:     item.Summary,
			URL:         item.URL,
			SourceName:  item.SourceName,
			PublishedAt: item.PublishedAt,
		})
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("no valid articles in %s", path)
	}
	return articles, nil
}

// Source serves loaded articles through the same Searcher interface the
// live API client implements. A query matches when every term occurs in
// the article text, case-insensitively, and the publish time falls
// inside the window (articles without a publish time always pass).
type Source struct {
	articles []newsapi.Article
}

// NewSource wraps a loaded article list.
func NewSource(articles []newsapi.Article) *Source {
	return &Source{articles: articles}
}

// Search filters the loaded articles against spec and window.
func (s *Source) Search(ctx context.Context, spec newsapi.QuerySpec, window newsapi.Window) ([]newsapi.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(spec.String()))
	var out []newsapi.Article
	for _, a := range s.articles {
		if !a.PublishedAt.IsZero() {
			if a.PublishedAt.Before(window.From) || a.PublishedAt.After(window.To) {
				continue
			}
		}
		text := strings.ToLower(a.Text())
		matched := true
		for _, term := range terms {
			if !strings.Contains(text, term) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, a)
		}
	}
	return out, nil
}
