package weather

import (
	"context"
	"errors"
)

// ErrUpstream marks failures talking to a forecast provider: transport errors,
// non-2xx responses and undecodable payloads.
var ErrUpstream = errors.New("upstream forecast provider failed")

// HourlySeries is a provider's hourly time series, keyed by variable name.
// Each value slice runs parallel to Times; nil entries are missing samples.
type HourlySeries struct {
	Times []string

	// UTCOffsetSeconds is the offset of the location-local timestamps in Times.
	UTCOffsetSeconds int

	Values map[string][]*float64
}

// Forecaster abstracts the upstream weather and marine data source.
type Forecaster interface {
	Name() string
	FetchWeather(ctx context.Context, loc Location, variables []string) (HourlySeries, error)
	FetchMarine(ctx context.Context, loc Location, variables []string) (HourlySeries, error)
}

// Requested hourly variables, in the provider's naming.
const (
	VarTemperature              = "temperature_2m"
	VarPrecipitation            = "precipitation"
	VarPrecipitationProbability = "precipitation_probability"
	VarCloudCover               = "cloud_cover"
	VarWindSpeed                = "wind_speed_10m"
	VarSnowfall                 = "snowfall"
	VarSnowDepth                = "snow_depth"

	VarWaveHeight = "wave_height"
	VarWavePeriod = "wave_period"
)

var (
	WeatherVariables = []string{
		VarTemperature,
		VarPrecipitation,
		VarPrecipitationProbability,
		VarCloudCover,
		VarWindSpeed,
		VarSnowfall,
		VarSnowDepth,
	}
	MarineVariables = []string{VarWaveHeight, VarWavePeriod}
)
