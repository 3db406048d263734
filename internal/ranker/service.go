// Package ranker ties forecast aggregation to activity scoring.
package ranker

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/i474232898/activity-ranking/internal/activity"
	"github.com/i474232898/activity-ranking/internal/geocode"
	"github.com/i474232898/activity-ranking/internal/weather"
)

// MetricsFetcher produces week-ahead metrics for a location.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, loc weather.Location) (weather.WeatherMetrics, weather.MarineMetrics, error)
}

// Geocoder resolves an address to a place.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Place, error)
}

// Result is a ranking together with the inputs it was computed from.
type Result struct {
	Location weather.Location       `json:"location"`
	Place    *geocode.Place         `json:"place,omitempty"`
	Weather  weather.WeatherMetrics `json:"weather"`
	Marine   weather.MarineMetrics  `json:"marine"`
	Ranking  activity.Ranking       `json:"activities"`
}

// Service ranks activities for coordinates or addresses.
type Service struct {
	fetcher  MetricsFetcher
	geocoder Geocoder
	upstream string
	scope    tally.Scope
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithGeocoder enables address lookups.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithMetricsScope records request counters and latencies on scope.
func WithMetricsScope(scope tally.Scope) Option {
	return func(s *Service) {
		s.scope = scope
	}
}

// WithUpstreamName sets the name used in probe results.
func WithUpstreamName(name string) Option {
	return func(s *Service) {
		s.upstream = name
	}
}

// NewService creates a new Service.
func NewService(fetcher MetricsFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		upstream: "forecast",
		scope:    tally.NoopScope,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RankCoordinates fetches the week-ahead forecast for (lat, lon) and ranks
// the activities. Coordinates are passed to the upstream unvalidated.
func (s *Service) RankCoordinates(ctx context.Context, lat, lon float64) (Result, error) {
	return s.rank(ctx, weather.Location{Latitude: lat, Longitude: lon}, nil)
}

// RankAddress geocodes address and ranks the activities at the result.
func (s *Service) RankAddress(ctx context.Context, address string) (Result, error) {
	if s.geocoder == nil {
		return Result{}, geocode.ErrNotConfigured
	}

	place, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.scope.Counter("geocode_failures").Inc(1)
		return Result{}, err
	}

	return s.rank(ctx, place.Location, &place)
}

func (s *Service) rank(ctx context.Context, loc weather.Location, place *geocode.Place) (Result, error) {
	logger := log.WithFields(log.Fields{
		"prefix":   "ranker",
		"location": loc.Key(),
	})

	s.scope.Counter("rank_requests").Inc(1)
	sw := s.scope.Timer("rank_latency").Start()
	defer sw.Stop()

	wx, sea, err := s.fetcher.FetchMetrics(ctx, loc)
	if err != nil {
		s.scope.Counter("upstream_failures").Inc(1)
		return Result{}, err
	}

	ranking, err := activity.Rank(wx, &sea)
	if err != nil {
		s.scope.Counter("invalid_metrics").Inc(1)
		return Result{}, fmt.Errorf("rank %s: %w", loc.Key(), err)
	}

	logger.WithField("best", ranking[0].Activity.String()).Debug("ranked activities")

	return Result{
		Location: loc,
		Place:    place,
		Weather:  wx,
		Marine:   sea,
		Ranking:  ranking,
	}, nil
}

// Probe performs one end-to-end forecast fetch for loc and reports whether
// the upstream answered. Errors are captured in the result, not returned.
func (s *Service) Probe(ctx context.Context, loc weather.Location) weather.ProbeResult {
	start := s.now()
	_, _, err := s.fetcher.FetchMetrics(ctx, loc)

	res := weather.ProbeResult{
		Upstream:  s.upstream,
		Location:  loc,
		OK:        err == nil,
		Latency:   s.now().Sub(start),
		CheckedAt: start.UTC(),
	}
	if err != nil {
		res.Error = err.Error()
		s.scope.Counter("probe_failures").Inc(1)
	}
	return res
}
