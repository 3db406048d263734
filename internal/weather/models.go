package weather

import (
	"fmt"
	"time"
)

// AggregationWindow is the span of forecast hours averaged into a metric.
const AggregationWindow = 7 * 24 * time.Hour

// Location is a coordinate for which forecasts are fetched.
// No range validation happens here; the upstream decides what it accepts.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for this location, used in logs and probe records.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// WeatherMetrics holds week-ahead means of the general forecast variables.
// A zero value means "no data in the window", not an observed zero.
type WeatherMetrics struct {
	Temperature   float64 `json:"temperature2m"` // °C
	Precipitation float64 `json:"precipitation"` // mm/hr
	CloudCover    float64 `json:"cloudCover"`    // %
	WindSpeed     float64 `json:"windSpeed10m"`  // m/s
	Snowfall      float64 `json:"snowfall"`      // cm/hr
	SnowDepth     float64 `json:"snowDepth"`     // cm

	// PrecipitationProbability is nil when the window held no valid samples.
	PrecipitationProbability *float64 `json:"precipitationProbability,omitempty"` // %
}

// MarineMetrics holds week-ahead means of the marine forecast variables.
type MarineMetrics struct {
	WaveHeight float64 `json:"waveHeight"` // m
	WavePeriod float64 `json:"wavePeriod"` // s
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the aggregation window beginning at now.
func NewWindow(now time.Time) Window {
	return Window{Start: now, End: now.Add(AggregationWindow)}
}

// Contains reports whether t lies inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ProbeResult records one health check of an upstream provider.
type ProbeResult struct {
	Upstream  string        `json:"upstream"`
	Location  Location      `json:"location"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latencyNs"`
	CheckedAt time.Time     `json:"checkedAt"` // always UTC
}
