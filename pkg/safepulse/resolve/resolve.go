package resolve

import (
	"context"

	"github.com/gaurvviii/safepulse/pkg/safepulse/entities"
	"github.com/gaurvviii/safepulse/pkg/safepulse/gazetteer"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
)

// Geocoder is the rate-limited external fallback. Misses and errors are
// both reported as ok=false.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.Point, bool)
}

// Resolver turns free text into a coordinate through a fixed fallback
// chain: gazetteer scan of the whole text, then place-name extraction
// with a gazetteer retry on the extracted token, then the external
// geocoder. The first success wins; no coordinate is ever invented.
type Resolver struct {
	Gazetteer *gazetteer.Table
	Tagger    entities.Tagger
	Geocoder  Geocoder

	// Country is appended to geocoder queries to narrow the external
	// search ("<place>, <country>").
	Country string
}

// New returns a resolver with the builtin gazetteer and heuristic
// tagger. geocoder may be nil, in which case the chain stops after the
// gazetteer retry.
func New(geocoder Geocoder, country string) *Resolver {
	return &Resolver{
		Gazetteer: gazetteer.Default(),
		Tagger:    entities.NewHeuristicTagger(),
		Geocoder:  geocoder,
		Country:   country,
	}
}

// Resolve returns the first coordinate the chain produces, or ok=false
// when every stage misses.
func (r *Resolver) Resolve(ctx context.Context, text string) (geo.Point, bool) {
	if text == "" {
		return geo.Point{}, false
	}

	if pt, ok := r.Gazetteer.Resolve(text); ok {
		return pt, true
	}

	place := r.firstPlace(text)
	if place == "" {
		return geo.Point{}, false
	}

	if pt, ok := r.Gazetteer.Resolve(place); ok {
		return pt, true
	}

	if r.Geocoder == nil {
		return geo.Point{}, false
	}

	query := place
	if r.Country != "" {
		query = place + ", " + r.Country
	}
	return r.Geocoder.Geocode(ctx, query)
}

func (r *Resolver) firstPlace(text string) string {
	if r.Tagger == nil {
		return ""
	}
	for _, tag := range r.Tagger.Tags(text) {
		if tag.Label == entities.LabelPlace {
			return tag.Text
		}
	}
	return ""
}
