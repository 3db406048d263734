package weather

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator fetches the weather and marine series for a location and reduces
// them to week-ahead means.
type Aggregator struct {
	forecaster Forecaster
	now        func() time.Time
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the clock that anchors the aggregation window.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates a new Aggregator.
func NewAggregator(forecaster Forecaster, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		forecaster: forecaster,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchMetrics requests both series concurrently and waits for both.
// If either request fails the whole call fails; there is no partial result.
func (a *Aggregator) FetchMetrics(ctx context.Context, loc Location) (WeatherMetrics, MarineMetrics, error) {
	if a.forecaster == nil {
		return WeatherMetrics{}, MarineMetrics{}, fmt.Errorf("no forecast provider configured")
	}

	logger := log.WithFields(log.Fields{
		"prefix":   "aggregator",
		"provider": a.forecaster.Name(),
		"location": loc.Key(),
	})

	var (
		g         errgroup.Group
		wxSeries  HourlySeries
		seaSeries HourlySeries
	)

	// A plain Group: one failing request does not cancel the other.
	g.Go(func() error {
		s, err := a.forecaster.FetchWeather(ctx, loc, WeatherVariables)
		if err != nil {
			return fmt.Errorf("weather forecast: %w", err)
		}
		wxSeries = s
		return nil
	})
	g.Go(func() error {
		s, err := a.forecaster.FetchMarine(ctx, loc, MarineVariables)
		if err != nil {
			return fmt.Errorf("marine forecast: %w", err)
		}
		seaSeries = s
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Warn("forecast fetch failed")
		return WeatherMetrics{}, MarineMetrics{}, err
	}

	window := NewWindow(a.now())
	wx := AggregateWeather(wxSeries, window)
	sea := AggregateMarine(seaSeries, window)

	logger.WithFields(log.Fields{
		"weatherSamples": len(wxSeries.Times),
		"marineSamples":  len(seaSeries.Times),
	}).Debug("aggregated forecast")

	return wx, sea, nil
}
