package geocode

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gaurvviii/safepulse/internal/metrics"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
)

// DefaultMinInterval is the minimum spacing between calls to the
// external service. Nominatim's usage policy asks for at most one
// request per second.
const DefaultMinInterval = time.Second

// DefaultCallTimeout bounds one external call.
const DefaultCallTimeout = 8 * time.Second

// Limited wraps a Geocoder with a token bucket enforcing a minimum
// inter-call delay, a per-call timeout, and backoff after a 429. Errors
// from the wrapped geocoder are swallowed into a miss; resolution
// failure is never pipeline-fatal.
type Limited struct {
	inner       Geocoder
	limiter     *rate.Limiter
	callTimeout time.Duration
	log         *slog.Logger

	mu      sync.Mutex
	retryAt time.Time
}

// LimitedConfig configures a Limited geocoder.
type LimitedConfig struct {
	// MinInterval is the minimum delay between calls. Defaults to
	// DefaultMinInterval.
	MinInterval time.Duration
	// CallTimeout bounds each external call. Defaults to
	// DefaultCallTimeout.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// NewLimited wraps inner with rate limiting.
func NewLimited(inner Geocoder, cfg LimitedConfig) *Limited {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Limited{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		callTimeout: cfg.CallTimeout,
		log:         logger,
	}
}

// Geocode resolves query through the wrapped geocoder. The enforced
// delay blocks only this caller; concurrent resolutions queue on the
// token bucket rather than serializing the rest of the pipeline. Any
// failure, including timeout, yields a miss.
func (l *Limited) Geocode(ctx context.Context, query string) (geo.Point, bool) {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return geo.Point{}, false
		case <-time.After(wait):
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return geo.Point{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	pt, ok, err := l.inner.Geocode(callCtx, query)
	if err != nil {
		if errors.Is(err, internalerr.ErrRateLimited) {
			l.recordRateLimit()
		}
		l.log.Debug("geocode miss", "query", query, "error", err)
		metrics.GeocodeMissesTotal.Inc()
		return geo.Point{}, false
	}
	if !ok {
		metrics.GeocodeMissesTotal.Inc()
	}
	return pt, ok
}

func (l *Limited) recordRateLimit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = time.Now().Add(30 * time.Second)
}
