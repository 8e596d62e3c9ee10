package gazetteer

import (
	"sort"
	"strings"

	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
)

// Entry maps one place name to its coordinate.
type Entry struct {
	Name  string
	Point geo.Point
}

// Table is a fixed place-name lookup table. Resolution is a
// case-insensitive substring scan over the input text, so it works on
// whole headlines as well as single extracted tokens.
type Table struct {
	entries []entry
}

type entry struct {
	lower string
	point geo.Point
}

// New builds a table from the given entries. Longer names are checked
// first so that "Navi Mumbai" wins over "Mumbai" when both occur.
func New(entries []Entry) *Table {
	t := &Table{entries: make([]entry, 0, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		t.entries = append(t.entries, entry{lower: strings.ToLower(name), point: e.Point})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].lower) > len(t.entries[j].lower)
	})
	return t
}

// Default returns the builtin table of major Indian cities and
// neighbourhoods.
func Default() *Table {
	return New(builtin)
}

// WithExtra returns a new table containing the builtin entries plus the
// given additions. Additions take precedence over builtins of equal length.
func WithExtra(extra []Entry) *Table {
	merged := make([]Entry, 0, len(builtin)+len(extra))
	merged = append(merged, extra...)
	merged = append(merged, builtin...)
	return New(merged)
}

// Resolve scans text for any known place name and returns its
// coordinate. The scan is deterministic: longest names first, insertion
// order among equals.
func (t *Table) Resolve(text string) (geo.Point, bool) {
	if text == "" {
		return geo.Point{}, false
	}
	lower := strings.ToLower(text)
	for _, e := range t.entries {
		if strings.Contains(lower, e.lower) {
			return e.point, true
		}
	}
	return geo.Point{}, false
}

// Names returns all place names known to the table, longest first.
func (t *Table) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.lower
	}
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

var builtin = []Entry{
	{"Delhi", geo.Point{Lat: 28.7041, Lon: 77.1025}},
	{"New Delhi", geo.Point{Lat: 28.6139, Lon: 77.2090}},
	{"Mumbai", geo.Point{Lat: 19.0760, Lon: 72.8777}},
	{"Navi Mumbai", geo.Point{Lat: 19.0330, Lon: 73.0297}},
	{"Bengaluru", geo.Point{Lat: 12.9716, Lon: 77.5946}},
	{"Bangalore", geo.Point{Lat: 12.9716, Lon: 77.5946}},
	{"Hyderabad", geo.Point{Lat: 17.3850, Lon: 78.4867}},
	{"Chennai", geo.Point{Lat: 13.0827, Lon: 80.2707}},
	{"Kolkata", geo.Point{Lat: 22.5726, Lon: 88.3639}},
	{"Pune", geo.Point{Lat: 18.5204, Lon: 73.8567}},
	{"Ahmedabad", geo.Point{Lat: 23.0225, Lon: 72.5714}},
	{"Jaipur", geo.Point{Lat: 26.9124, Lon: 75.7873}},
	{"Lucknow", geo.Point{Lat: 26.8467, Lon: 80.9462}},
	{"Kanpur", geo.Point{Lat: 26.4499, Lon: 80.3319}},
	{"Nagpur", geo.Point{Lat: 21.1458, Lon: 79.0882}},
	{"Indore", geo.Point{Lat: 22.7196, Lon: 75.8577}},
	{"Bhopal", geo.Point{Lat: 23.2599, Lon: 77.4126}},
	{"Patna", geo.Point{Lat: 25.5941, Lon: 85.1376}},
	{"Vadodara", geo.Point{Lat: 22.3072, Lon: 73.1812}},
	{"Surat", geo.Point{Lat: 21.1702, Lon: 72.8311}},
	{"Ludhiana", geo.Point{Lat: 30.9010, Lon: 75.8573}},
	{"Agra", geo.Point{Lat: 27.1767, Lon: 78.0081}},
	{"Nashik", geo.Point{Lat: 19.9975, Lon: 73.7898}},
	{"Varanasi", geo.Point{Lat: 25.3176, Lon: 82.9739}},
	{"Amritsar", geo.Point{Lat: 31.6340, Lon: 74.8723}},
	{"Chandigarh", geo.Point{Lat: 30.7333, Lon: 76.7794}},
	{"Coimbatore", geo.Point{Lat: 11.0168, Lon: 76.9558}},
	{"Kochi", geo.Point{Lat: 9.9312, Lon: 76.2673}},
	{"Thiruvananthapuram", geo.Point{Lat: 8.5241, Lon: 76.9366}},
	{"Visakhapatnam", geo.Point{Lat: 17.6868, Lon: 83.2185}},
	{"Bhubaneswar", geo.Point{Lat: 20.2961, Lon: 85.8245}},
	{"Guwahati", geo.Point{Lat: 26.1445, Lon: 91.7362}},
	{"Dehradun", geo.Point{Lat: 30.3165, Lon: 78.0322}},
	{"Srinagar", geo.Point{Lat: 34.0837, Lon: 74.7973}},
	{"Mysuru", geo.Point{Lat: 12.2958, Lon: 76.6394}},
	{"Gurgaon", geo.Point{Lat: 28.4595, Lon: 77.0266}},
	{"Gurugram", geo.Point{Lat: 28.4595, Lon: 77.0266}},
	{"Noida", geo.Point{Lat: 28.5355, Lon: 77.3910}},
	{"Ghaziabad", geo.Point{Lat: 28.6692, Lon: 77.4538}},
	{"Faridabad", geo.Point{Lat: 28.4089, Lon: 77.3178}},
	{"Koramangala", geo.Point{Lat: 12.9352, Lon: 77.6245}},
	{"Whitefield", geo.Point{Lat: 12.9698, Lon: 77.7500}},
	{"Electronic City", geo.Point{Lat: 12.8452, Lon: 77.6602}},
	{"Andheri", geo.Point{Lat: 19.1136, Lon: 72.8697}},
	{"Bandra", geo.Point{Lat: 19.0596, Lon: 72.8295}},
	{"Connaught Place", geo.Point{Lat: 28.6315, Lon: 77.2167}},
	{"Saket", geo.Point{Lat: 28.5245, Lon: 77.2066}},
	{"Dwarka", geo.Point{Lat: 28.5921, Lon: 77.0460}},
}
