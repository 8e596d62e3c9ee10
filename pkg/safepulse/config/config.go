package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaurvviii/safepulse/pkg/safepulse/gazetteer"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
	"github.com/gaurvviii/safepulse/pkg/safepulse/newsapi"
)

// Config is the pipeline configuration.
type Config struct {
	Country         string    `yaml:"country"`
	WindowDays      int       `yaml:"window_days"`
	Capacity        int       `yaml:"capacity"`
	MaxDistanceKm   float64   `yaml:"max_distance_km"`
	Workers         int       `yaml:"workers"`
	DefaultLocation geo.Point `yaml:"default_location"`

	BoundingBox geo.BoundingBox `yaml:"bounding_box"`

	// Queries are term lists; each list becomes one fan-out query.
	Queries [][]string `yaml:"queries"`

	// Keywords extend the relevance keyword list. When empty, the
	// gazetteer place names plus the country name are used.
	Keywords []string `yaml:"keywords"`

	// Gazetteer entries are added on top of the builtin table.
	Gazetteer []GazetteerEntry `yaml:"gazetteer"`

	News     NewsConfig     `yaml:"news"`
	Geocoder GeocoderConfig `yaml:"geocoder"`

	StorePath string `yaml:"store_path"`
}

// GazetteerEntry is one configured place name.
type GazetteerEntry struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// NewsConfig configures the news search API client.
type NewsConfig struct {
	BaseURL     string `yaml:"base_url"`
	Lang        string `yaml:"lang"`
	Country     string `yaml:"country"`
	MaxPerQuery int    `yaml:"max_per_query"`
}

// GeocoderConfig configures the rate-limited geocoder.
type GeocoderConfig struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	MinInterval time.Duration `yaml:"min_interval"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// Default returns the builtin configuration for the India region.
func Default() *Config {
	return &Config{
		Country:       "India",
		WindowDays:    7,
		Capacity:      50,
		MaxDistanceKm: 500,
		Workers:       4,
		// New Delhi, used when resolution fails.
		DefaultLocation: geo.Point{Lat: 28.6139, Lon: 77.2090},
		BoundingBox:     geo.BoundingBox{MinLat: 6.0, MaxLat: 37.5, MinLon: 68.0, MaxLon: 97.5},
		Queries: [][]string{
			{"crime", "India"},
			{"assault", "woman", "India"},
			{"robbery", "India"},
			{"harassment", "India"},
		},
		News: NewsConfig{
			BaseURL:     "https://gnews.io/api/v4",
			Lang:        "en",
			Country:     "in",
			MaxPerQuery: 25,
		},
		Geocoder: GeocoderConfig{
			BaseURL:     "https://nominatim.openstreetmap.org",
			UserAgent:   "safepulse/1.0",
			MinInterval: time.Second,
			CallTimeout: 8 * time.Second,
		},
		StorePath: "safepulse.db",
	}
}

// Load reads a YAML config from path, applied on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("config: capacity must be positive: %w", internalerr.ErrInvalidConfig)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("config: window_days must be positive: %w", internalerr.ErrInvalidConfig)
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("config: at least one query required: %w", internalerr.ErrInvalidConfig)
	}
	b := c.BoundingBox
	if !b.IsZero() && (b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon) {
		return fmt.Errorf("config: inverted bounding box: %w", internalerr.ErrInvalidConfig)
	}
	if (c.DefaultLocation == geo.Point{}) {
		return fmt.Errorf("config: default_location required: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// QuerySpecs converts the configured term lists.
func (c *Config) QuerySpecs() []newsapi.QuerySpec {
	specs := make([]newsapi.QuerySpec, 0, len(c.Queries))
	for _, terms := range c.Queries {
		spec := newsapi.NewQuerySpec(terms...)
		if !spec.IsEmpty() {
			specs = append(specs, spec)
		}
	}
	return specs
}

// GazetteerTable returns the builtin table extended with configured
// entries.
func (c *Config) GazetteerTable() *gazetteer.Table {
	extra := make([]gazetteer.Entry, 0, len(c.Gazetteer))
	for _, e := range c.Gazetteer {
		extra = append(extra, gazetteer.Entry{Name: e.Name, Point: geo.Point{Lat: e.Lat, Lon: e.Lon}})
	}
	return gazetteer.WithExtra(extra)
}

// KeywordList returns the relevance keywords: the configured list, or
// the gazetteer place names plus the country when none are configured.
func (c *Config) KeywordList() []string {
	if len(c.Keywords) > 0 {
		return c.Keywords
	}
	names := c.GazetteerTable().Names()
	if c.Country != "" {
		names = append(names, c.Country)
	}
	return names
}
