package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/activity-ranking/internal/weather"
)

const forecastBody = `{
	"latitude": 46.5,
	"longitude": 7.9,
	"timezone": "Europe/Zurich",
	"utc_offset_seconds": 3600,
	"hourly_units": {"time": "iso8601", "temperature_2m": "°C"},
	"hourly": {
		"time": ["2024-01-10T00:00", "2024-01-10T01:00", "2024-01-10T02:00"],
		"temperature_2m": [-1.5, null, -3.5],
		"snow_depth": [0.6, "n/a", 0.7]
	}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, retries int) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenMeteoProvider(srv.Client(), OpenMeteoOptions{
		ForecastURL:  srv.URL + "/v1/forecast",
		MarineURL:    srv.URL + "/v1/marine",
		ForecastDays: 8,
		MaxRetries:   retries,
	})
}

func TestFetchWeather(t *testing.T) {
	var query atomic.Value

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		query.Store(r.URL.Query())
		_, _ = w.Write([]byte(forecastBody))
	}, 0)

	series, err := p.FetchWeather(context.Background(), weather.Location{Latitude: 46.5, Longitude: 7.9}, []string{
		weather.VarTemperature, weather.VarSnowDepth, weather.VarSnowfall,
	})
	require.NoError(t, err)

	q := query.Load().(url.Values)
	assert.Equal(t, []string{"46.5"}, q["latitude"])
	assert.Equal(t, []string{"7.9"}, q["longitude"])
	assert.Equal(t, []string{"temperature_2m,snow_depth,snowfall"}, q["hourly"])
	assert.Equal(t, []string{"auto"}, q["timezone"])
	assert.Equal(t, []string{"8"}, q["forecast_days"])
	assert.Equal(t, []string{"ms"}, q["wind_speed_unit"])

	assert.Equal(t, 3600, series.UTCOffsetSeconds)
	assert.Len(t, series.Times, 3)

	temps := series.Values[weather.VarTemperature]
	require.Len(t, temps, 3)
	assert.Equal(t, -1.5, *temps[0])
	assert.Nil(t, temps[1])
	assert.Equal(t, -3.5, *temps[2])

	depth := series.Values[weather.VarSnowDepth]
	require.Len(t, depth, 3)
	assert.Nil(t, depth[1], "non-numeric samples are missing, not zero")
	assert.InDelta(t, 60.0, *depth[0], 1e-9, "snow depth is reported in centimetres")

	assert.Nil(t, series.Values[weather.VarSnowfall])
}

func TestFetchMarineUsesMarineEndpoint(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/marine", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("wind_speed_unit"))
		_, _ = w.Write([]byte(`{"utc_offset_seconds":0,"hourly":{"time":["2024-01-10T00:00"],"wave_height":[1.2],"wave_period":[9]}}`))
	}, 0)

	series, err := p.FetchMarine(context.Background(), weather.Location{}, weather.MarineVariables)
	require.NoError(t, err)
	assert.Equal(t, 1.2, *series.Values[weather.VarWaveHeight][0])
	assert.Equal(t, 9.0, *series.Values[weather.VarWavePeriod][0])
}

func TestFetchUpstreamErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		reason string
	}{
		"bad request":  {http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`, "Latitude must be in range"},
		"server error": {http.StatusBadGateway, `oops`, "oops"},
		"rate limited": {http.StatusTooManyRequests, ``, "rate limited"},
		"malformed":    {http.StatusOK, `{"hourly": [`, "decode"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}, 0)

			_, err := p.FetchWeather(context.Background(), weather.Location{Latitude: 120}, weather.WeatherVariables)
			require.Error(t, err)
			assert.ErrorIs(t, err, weather.ErrUpstream)
			assert.Contains(t, err.Error(), c.reason)
		})
	}
}

func TestFetchToleratesMalformedSeries(t *testing.T) {
	cases := map[string]struct {
		body      string
		wantTimes int
	}{
		"scalar variable": {`{"hourly":{"time":["2024-01-10T00:00"],"temperature_2m":[1.0],"snow_depth":"unavailable"}}`, 1},
		"object variable": {`{"hourly":{"time":["2024-01-10T00:00"],"temperature_2m":[1.0],"snow_depth":{"v":1}}}`, 1},
		"scalar time":     {`{"hourly":{"time":"2024-01-10T00:00","temperature_2m":[1.0],"snow_depth":4}}`, 0},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(c.body))
			}, 0)

			series, err := p.FetchWeather(context.Background(), weather.Location{}, weather.WeatherVariables)
			require.NoError(t, err)

			assert.Len(t, series.Times, c.wantTimes)
			assert.Nil(t, series.Values[weather.VarSnowDepth])
			require.Len(t, series.Values[weather.VarTemperature], 1)

			window := weather.Window{
				Start: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			}
			assert.Zero(t, weather.AggregateWeather(series, window).SnowDepth)
		})
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"hourly":{"time":[]}}`))
	}, 1)

	_, err := p.FetchWeather(context.Background(), weather.Location{}, weather.WeatherVariables)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchDoesNotRetryByDefault(t *testing.T) {
	var calls atomic.Int32

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	_, err := p.FetchWeather(context.Background(), weather.Location{}, weather.WeatherVariables)
	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.EqualValues(t, 1, calls.Load())
}
