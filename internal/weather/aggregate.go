package weather

import (
	"math"
	"time"
)

// localTimeLayout is the timestamp format used by providers asked for timezone=auto.
const localTimeLayout = "2006-01-02T15:04"

// AverageOverWindow returns the arithmetic mean of the samples whose timestamp
// falls inside window, and how many samples contributed.
// Missing, NaN or infinite samples and unparsable timestamps are skipped.
// When no sample qualifies the mean is 0.
func AverageOverWindow(times []string, values []*float64, utcOffsetSeconds int, window Window) (float64, int) {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	if n == 0 {
		return 0, 0
	}

	zone := time.FixedZone("", utcOffsetSeconds)

	var (
		sum   float64
		count int
	)
	for i := 0; i < n; i++ {
		v := values[i]
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		ts, ok := parseSampleTime(times[i], zone)
		if !ok || !window.Contains(ts) {
			continue
		}
		sum += *v
		count++
	}

	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// parseSampleTime accepts the provider's local "2006-01-02T15:04" form and falls
// back to RFC3339 for timestamps that carry their own offset.
func parseSampleTime(s string, zone *time.Location) (time.Time, bool) {
	if ts, err := time.ParseInLocation(localTimeLayout, s, zone); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// AggregateWeather reduces a general forecast series to week-ahead means.
func AggregateWeather(series HourlySeries, window Window) WeatherMetrics {
	avg := func(name string) (float64, int) {
		return AverageOverWindow(series.Times, series.Values[name], series.UTCOffsetSeconds, window)
	}

	var m WeatherMetrics
	m.Temperature, _ = avg(VarTemperature)
	m.Precipitation, _ = avg(VarPrecipitation)
	m.CloudCover, _ = avg(VarCloudCover)
	m.WindSpeed, _ = avg(VarWindSpeed)
	m.Snowfall, _ = avg(VarSnowfall)
	m.SnowDepth, _ = avg(VarSnowDepth)

	if p, n := avg(VarPrecipitationProbability); n > 0 {
		m.PrecipitationProbability = &p
	}
	return m
}

// AggregateMarine reduces a marine forecast series to week-ahead means.
func AggregateMarine(series HourlySeries, window Window) MarineMetrics {
	var m MarineMetrics
	m.WaveHeight, _ = AverageOverWindow(series.Times, series.Values[VarWaveHeight], series.UTCOffsetSeconds, window)
	m.WavePeriod, _ = AverageOverWindow(series.Times, series.Values[VarWavePeriod], series.UTCOffsetSeconds, window)
	return m
}
