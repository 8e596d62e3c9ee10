package classify

import (
	"bytes"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
)

// Classifier decides whether an article is in scope for the target
// region. The two checks are a deliberate OR: keyword evidence keeps an
// article even without an in-box coordinate, and an in-box coordinate
// keeps one even without a keyword hit.
type Classifier struct {
	keywords []string
	bbox     geo.BoundingBox
}

// New builds a classifier from a keyword list and a bounding box.
// Keywords are matched case-insensitively as substrings.
func New(keywords []string, bbox geo.BoundingBox) *Classifier {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Classifier{keywords: lowered, bbox: bbox}
}

// InScope reports whether an article survives relevance filtering.
// resolved marks whether pt came from actual resolution; the bounding
// box arm never fires for fallback coordinates, so unresolved articles
// stand or fall on the keyword check alone.
func (c *Classifier) InScope(text string, pt geo.Point, resolved bool) bool {
	if c.matchesKeyword(text) {
		return true
	}
	return resolved && !c.bbox.IsZero() && c.bbox.Contains(pt)
}

func (c *Classifier) matchesKeyword(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NewIncident creates the immutable incident record for an article that
// passed classification. The ID is assigned here, once, and never
// changes. It is a ULID derived from the publish time and a hash of the
// article URL and title, so the same article always yields the same ID
// and re-fetched articles dedupe against stored ones.
func NewIncident(a newsapi.Article, pt geo.Point) store.Incident {
	return store.Incident{
		ID:          incidentID(a),
		Title:       a.Title,
		Summary:     a.Summary,
		SourceURL:   a.URL,
		SourceName:  a.SourceName,
		Coordinate:  pt,
		PublishedAt: a.PublishedAt,
	}
}

func incidentID(a newsapi.Article) string {
	ts := a.PublishedAt
	if ts.IsZero() {
		ts = time.Unix(0, 0)
	}
	sum := sha256.Sum256([]byte(a.URL + "\x1f" + a.Title))
	return ulid.MustNew(ulid.Timestamp(ts.UTC()), bytes.NewReader(sum[:])).String()
}
