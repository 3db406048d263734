package activity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/i474232898/activity-ranking/internal/weather"
)

// ErrInvalidMetrics is returned when an input metric is NaN or infinite.
var ErrInvalidMetrics = errors.New("invalid weather metrics")

// Rank scores every activity for the given week-ahead metrics and orders them
// best first. A nil sea is treated as all-zero marine metrics.
// Equal scores keep the fixed activity order (Skiing, Surfing, Outdoor, Indoor).
func Rank(wx weather.WeatherMetrics, sea *weather.MarineMetrics) (Ranking, error) {
	var marine weather.MarineMetrics
	if sea != nil {
		marine = *sea
	}

	if err := validate(wx, marine); err != nil {
		return Ranking{}, err
	}

	precip := precipBad(wx)
	raw := [Count]float64{
		Skiing:             skiing(wx),
		Surfing:            surfing(wx, marine),
		OutdoorSightseeing: outdoor(wx, precip),
		IndoorSightseeing:  indoor(wx, precip),
	}

	var r Ranking
	for _, a := range All() {
		r[a] = Score{Activity: a, Score: int(math.Round(raw[a]))}
	}

	sort.Slice(r[:], func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Activity < r[j].Activity
	})

	return r, nil
}

type metric struct {
	name  string
	value float64
}

func validate(wx weather.WeatherMetrics, sea weather.MarineMetrics) error {
	metrics := []metric{
		{weather.VarTemperature, wx.Temperature},
		{weather.VarPrecipitation, wx.Precipitation},
		{weather.VarCloudCover, wx.CloudCover},
		{weather.VarWindSpeed, wx.WindSpeed},
		{weather.VarSnowfall, wx.Snowfall},
		{weather.VarSnowDepth, wx.SnowDepth},
		{weather.VarWaveHeight, sea.WaveHeight},
		{weather.VarWavePeriod, sea.WavePeriod},
	}
	if wx.PrecipitationProbability != nil {
		metrics = append(metrics, metric{weather.VarPrecipitationProbability, *wx.PrecipitationProbability})
	}

	for _, m := range metrics {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidMetrics, m.name, m.value)
		}
	}
	return nil
}

// precipBad is the share of the week considered wet, from the probability when
// the provider reported one and from intensity otherwise.
func precipBad(wx weather.WeatherMetrics) float64 {
	if wx.PrecipitationProbability != nil {
		return unit(*wx.PrecipitationProbability / 100)
	}
	return unit(wx.Precipitation / 2)
}

// skiing rewards sub-zero temperatures, fresh snow and a solid base.
func skiing(wx weather.WeatherMetrics) float64 {
	cold := 1 - SmoothStep(wx.Temperature, 0, 2)
	freshSnow := unit(wx.Snowfall / 5)
	baseDepth := unit(wx.SnowDepth / 50)
	windPenalty := 1 - unit((wx.WindSpeed-6)/10)
	rainPenalty := 1 - unit(wx.Precipitation/2)

	return 100 * (0.35*cold +
		0.30*freshSnow +
		0.20*baseDepth +
		0.10*windPenalty +
		0.05*rainPenalty)
}

// surfing rewards 0.5-3 m waves with an 8-16 s period and little wind.
func surfing(wx weather.WeatherMetrics, sea weather.MarineMetrics) float64 {
	waveSize := unit((sea.WaveHeight - 0.5) / (3 - 0.5))
	periodQuality := unit((sea.WavePeriod - 8) / (16 - 8))
	windPenalty := 1 - unit((wx.WindSpeed-3)/8)

	return 100 * (0.5*waveSize +
		0.35*periodQuality +
		0.15*windPenalty)
}

// outdoor peaks at 20°C under dry, calm and clear skies.
func outdoor(wx weather.WeatherMetrics, precip float64) float64 {
	tempComfort := unit(1 - math.Abs(wx.Temperature-20)/10)
	windOk := 1 - unit(wx.WindSpeed/10)
	cloudsOk := 1 - unit(wx.CloudCover/100)

	return 100 * (0.40*tempComfort +
		0.30*(1-precip) +
		0.20*windOk +
		0.10*cloudsOk)
}

// indoor is the mirror image: rain, wind and temperatures far from 20°C.
func indoor(wx weather.WeatherMetrics, precip float64) float64 {
	extremeTemp := unit(math.Abs(wx.Temperature-20) / 15)

	return 100 * (0.45*precip +
		0.30*unit(wx.WindSpeed/10) +
		0.25*extremeTemp)
}
