package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/i474232898/activity-ranking/internal/weather"
)

const (
	DefaultOpenMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultOpenMeteoMarineURL   = "https://marine-api.open-meteo.com/v1/marine"
)

// OpenMeteoOptions configures the Open-Meteo client.
type OpenMeteoOptions struct {
	ForecastURL string
	MarineURL   string

	// ForecastDays is sent as forecast_days when positive.
	ForecastDays int

	MaxRetries int
}

// OpenMeteoProvider implements weather.Forecaster for the Open-Meteo forecast
// and marine APIs.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	marineURL    string
	forecastDays int

	forecast *upstreamClient
	marine   *upstreamClient
}

func NewOpenMeteoProvider(client *http.Client, opts OpenMeteoOptions) *OpenMeteoProvider {
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultOpenMeteoForecastURL
	}
	if opts.MarineURL == "" {
		opts.MarineURL = DefaultOpenMeteoMarineURL
	}

	retry := retryPolicy{
		maxRetries: opts.MaxRetries,
		base:       500 * time.Millisecond,
		max:        5 * time.Second,
	}

	return &OpenMeteoProvider{
		name:         "openmeteo",
		forecastURL:  opts.ForecastURL,
		marineURL:    opts.MarineURL,
		forecastDays: opts.ForecastDays,
		forecast:     newUpstreamClient("openmeteo-forecast", client, retry),
		marine:       newUpstreamClient("openmeteo-marine", client, retry),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchWeather(ctx context.Context, loc weather.Location, variables []string) (weather.HourlySeries, error) {
	return p.fetchHourly(ctx, p.forecast, p.forecastURL, loc, variables, url.Values{
		"wind_speed_unit": {"ms"},
	})
}

func (p *OpenMeteoProvider) FetchMarine(ctx context.Context, loc weather.Location, variables []string) (weather.HourlySeries, error) {
	return p.fetchHourly(ctx, p.marine, p.marineURL, loc, variables, nil)
}

// unitScale converts provider units to the ones the scorer expects. Open-Meteo
// reports snow depth in metres.
var unitScale = map[string]float64{
	weather.VarSnowDepth: 100,
}

// hourlyPayload is the subset of an Open-Meteo response we read. The hourly
// object mixes the "time" array with one array per requested variable, so it
// is decoded as raw messages first.
type hourlyPayload struct {
	UTCOffsetSeconds int                        `json:"utc_offset_seconds"`
	Hourly           map[string]json.RawMessage `json:"hourly"`
}

func (p *OpenMeteoProvider) fetchHourly(
	ctx context.Context,
	client *upstreamClient,
	baseURL string,
	loc weather.Location,
	variables []string,
	extra url.Values,
) (weather.HourlySeries, error) {
	values := url.Values{}
	for k, v := range extra {
		values[k] = v
	}
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	values.Set("hourly", strings.Join(variables, ","))
	values.Set("timezone", "auto")
	if p.forecastDays > 0 {
		values.Set("forecast_days", strconv.Itoa(p.forecastDays))
	}

	resp, err := client.get(ctx, baseURL+"?"+values.Encode())
	if err != nil {
		return weather.HourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload hourlyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: decode %s response: %v", weather.ErrUpstream, p.name, err)
	}

	return p.decodeHourly(payload, variables), nil
}

// decodeHourly converts the raw hourly object into a weather.HourlySeries.
// Absent or malformed series yield nil slices, which average to 0.
func (p *OpenMeteoProvider) decodeHourly(payload hourlyPayload, variables []string) weather.HourlySeries {
	logger := log.WithFields(log.Fields{
		"prefix":   "providers",
		"provider": p.name,
	})

	series := weather.HourlySeries{
		UTCOffsetSeconds: payload.UTCOffsetSeconds,
		Values:           make(map[string][]*float64, len(variables)),
	}

	if raw, ok := payload.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &series.Times); err != nil {
			logger.WithError(err).Warn("ignoring malformed hourly time series")
			series.Times = nil
		}
	}

	for _, name := range variables {
		raw, ok := payload.Hourly[name]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			logger.WithError(err).WithField("variable", name).Warn("ignoring malformed hourly series")
			continue
		}
		samples := numericSamples(items)
		if scale, ok := unitScale[name]; ok {
			for _, v := range samples {
				if v != nil {
					*v *= scale
				}
			}
		}
		series.Values[name] = samples
	}

	return series
}

// numericSamples keeps numbers and turns nulls or any other JSON value into a
// missing sample.
func numericSamples(items []json.RawMessage) []*float64 {
	values := make([]*float64, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var v float64
		if err := json.Unmarshal(item, &v); err == nil {
			values[i] = &v
		}
	}
	return values
}
