package classify

import (
	"testing"
	"time"

	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

var india = geo.BoundingBox{MinLat: 6.0, MaxLat: 37.5, MinLon: 68.0, MaxLon: 97.5}

func TestInScopeOrSemantics(t *testing.T) {
	c := New([]string{"delhi", "mumbai", "india"}, india)

	inBox := geo.Point{Lat: 19.07, Lon: 72.87}
	outBox := geo.Point{Lat: 51.50, Lon: -0.12}

	tests := []struct {
		name     string
		text     string
		pt       geo.Point
		resolved bool
		want     bool
	}{
		{"keyword only, coordinate out of box", "robbery in Delhi suburb", outBox, true, true},
		{"coordinate only, no keyword", "local shopkeeper assaulted", inBox, true, true},
		{"both", "Mumbai chain snatching", inBox, true, true},
		{"neither", "London housing prices rise", outBox, true, false},
		{"keyword match is case-insensitive", "DELHI metro incident", outBox, true, true},
		{"unresolved with keyword", "stabbing reported in Delhi", geo.Point{}, false, true},
		{"unresolved without keyword", "stabbing reported downtown", geo.Point{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.InScope(tt.text, tt.pt, tt.resolved); got != tt.want {
				t.Errorf("InScope(%q, %v, %v) = %v, want %v", tt.text, tt.pt, tt.resolved, got, tt.want)
			}
		})
	}
}

func TestInScopeFallbackCoordinateNeverSatisfiesBox(t *testing.T) {
	c := New(nil, india)

	// A default/fallback coordinate sits inside the box; without the
	// resolved flag every unresolved article would pass.
	fallback := geo.Point{Lat: 28.61, Lon: 77.20}
	if c.InScope("nothing relevant here", fallback, false) {
		t.Error("fallback coordinate must not satisfy the bounding box check")
	}
}

func TestInScopeZeroBox(t *testing.T) {
	c := New([]string{"delhi"}, geo.BoundingBox{})

	if c.InScope("unrelated text", geo.Point{Lat: 20, Lon: 77}, true) {
		t.Error("zero box must not match anything")
	}
	if !c.InScope("Delhi incident", geo.Point{}, false) {
		t.Error("keyword arm should still work with zero box")
	}
}

func TestNewIncident(t *testing.T) {
	a := newsapi.Article{
		Title:       "Theft in Pune",
		Summary:     "Bike stolen near station.",
		URL:         "https://example.com/theft",
		SourceName:  "Example Times",
		PublishedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	pt := geo.Point{Lat: 18.52, Lon: 73.85}

	inc := NewIncident(a, pt)
	if inc.ID == "" {
		t.Error("incident must get an ID at creation")
	}
	if inc.Title != a.Title || inc.SourceURL != a.URL || inc.SourceName != a.SourceName {
		t.Errorf("fields not carried over: %+v", inc)
	}
	if inc.Coordinate != pt {
		t.Errorf("coordinate = %v, want %v", inc.Coordinate, pt)
	}

	// Same article yields the same ID, so re-fetches dedupe.
	again := NewIncident(a, pt)
	if again.ID != inc.ID {
		t.Errorf("ID not deterministic: %s vs %s", again.ID, inc.ID)
	}

	other := a
	other.URL = "https://example.com/other"
	if NewIncident(other, pt).ID == inc.ID {
		t.Error("distinct articles must get distinct IDs")
	}
}

func TestNewIncidentZeroPublishTime(t *testing.T) {
	a := newsapi.Article{Title: "Theft", URL: "https://example.com/t"}
	inc := NewIncident(a, geo.Point{})
	if inc.ID == "" {
		t.Error("zero publish time must still produce an ID")
	}
}
