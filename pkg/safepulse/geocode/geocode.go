package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gaurvviii/safepulse/internal/metrics"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
)

// Geocoder resolves a natural-language place query to a coordinate.
// A (zero Point, false, nil) result means the service had no match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.Point, bool, error)
}

// Client calls a Nominatim-compatible interactive search endpoint.
type Client struct {
	BaseURL   string
	UserAgent string

	HTTPClient *http.Client
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the best-match coordinate for query, if any.
func (c *Client) Geocode(ctx context.Context, query string) (geo.Point, bool, error) {
	if c.BaseURL == "" {
		return geo.Point{}, false, fmt.Errorf("geocode: base URL required")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return geo.Point{}, false, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	metrics.GeocodeCallsTotal.Inc()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return geo.Point{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return geo.Point{}, false, fmt.Errorf("geocode %q: %w", query, internalerr.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, false, fmt.Errorf("geocode %q: HTTP %d", query, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Point{}, false, fmt.Errorf("geocode %q: decode: %w", query, err)
	}
	if len(results) == 0 {
		return geo.Point{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("geocode %q: bad lat %q", query, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("geocode %q: bad lon %q", query, results[0].Lon)
	}

	return geo.Point{Lat: lat, Lon: lon}, true, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
