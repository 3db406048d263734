package activity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/activity-ranking/internal/weather"
)

func ptr(v float64) *float64 { return &v }

func TestClamp(t *testing.T) {
	cases := []struct {
		x, lo, hi, expected float64
	}{
		{0.5, 0, 1, 0.5},
		{-3, 0, 1, 0},
		{7, 0, 1, 1},
		{5, -10, 10, 5},
		{math.Inf(1), 0, 1, 1},
		{math.Inf(-1), 0, 1, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, Clamp(c.x, c.lo, c.hi), "Clamp(%v, %v, %v)", c.x, c.lo, c.hi)
	}
}

func TestSmoothStep(t *testing.T) {
	cases := []struct {
		x, a, b, expected float64
	}{
		{-1, 0, 2, 0},
		{0, 0, 2, 0},
		{1, 0, 2, 0.5},
		{2, 0, 2, 1},
		{5, 0, 2, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, SmoothStep(c.x, c.a, c.b), "SmoothStep(%v, %v, %v)", c.x, c.a, c.b)
	}
}

func TestRankZeroData(t *testing.T) {
	r, err := Rank(weather.WeatherMetrics{}, nil)
	require.NoError(t, err)

	assert.Equal(t, Ranking{
		{Activity: OutdoorSightseeing, Score: 60},
		{Activity: Skiing, Score: 50},
		{Activity: IndoorSightseeing, Score: 25},
		{Activity: Surfing, Score: 15},
	}, r)
}

func TestRankSkiingWeek(t *testing.T) {
	wx := weather.WeatherMetrics{
		Temperature: -2,
		Snowfall:    3,
		SnowDepth:   60,
		WindSpeed:   4,
	}

	r, err := Rank(wx, nil)
	require.NoError(t, err)

	assert.Equal(t, Score{Activity: Skiing, Score: 88}, r[0])
	assert.Equal(t, Ranking{
		{Activity: Skiing, Score: 88},
		{Activity: OutdoorSightseeing, Score: 52},
		{Activity: IndoorSightseeing, Score: 37},
		{Activity: Surfing, Score: 13},
	}, r)
}

func TestRankSurfingWeek(t *testing.T) {
	wx := weather.WeatherMetrics{WindSpeed: 2}
	sea := &weather.MarineMetrics{WaveHeight: 1.5, WavePeriod: 12}

	r, err := Rank(wx, sea)
	require.NoError(t, err)

	scores := map[Activity]int{}
	for _, s := range r {
		scores[s.Activity] = s.Score
	}
	assert.Equal(t, 53, scores[Surfing])
	assert.Equal(t, 56, scores[OutdoorSightseeing])
	assert.Equal(t, 50, scores[Skiing])
	assert.Equal(t, 31, scores[IndoorSightseeing])
}

func TestRankTieKeepsActivityOrder(t *testing.T) {
	wx := weather.WeatherMetrics{
		Temperature:              20,
		PrecipitationProbability: ptr(10),
		CloudCover:               20,
		WindSpeed:                2,
	}

	r, err := Rank(wx, nil)
	require.NoError(t, err)

	assert.Equal(t, Ranking{
		{Activity: OutdoorSightseeing, Score: 91},
		{Activity: Skiing, Score: 15},
		{Activity: Surfing, Score: 15},
		{Activity: IndoorSightseeing, Score: 11},
	}, r)
}

func TestRankWetWindyWeekFavoursIndoor(t *testing.T) {
	wx := weather.WeatherMetrics{
		Temperature:              12,
		Precipitation:            4,
		PrecipitationProbability: ptr(90),
		CloudCover:               100,
		WindSpeed:                12,
	}

	r, err := Rank(wx, nil)
	require.NoError(t, err)

	assert.Equal(t, Score{Activity: IndoorSightseeing, Score: 84}, r[0])
}

func TestPrecipitationProbabilityTakesPrecedence(t *testing.T) {
	dry := weather.WeatherMetrics{Precipitation: 2, PrecipitationProbability: ptr(0)}
	assert.Equal(t, 0.0, precipBad(dry))

	noProbability := weather.WeatherMetrics{Precipitation: 1}
	assert.Equal(t, 0.5, precipBad(noProbability))

	overflow := weather.WeatherMetrics{PrecipitationProbability: ptr(150)}
	assert.Equal(t, 1.0, precipBad(overflow))
}

func TestRankRejectsNonFiniteMetrics(t *testing.T) {
	_, err := Rank(weather.WeatherMetrics{Temperature: math.NaN()}, nil)
	assert.ErrorIs(t, err, ErrInvalidMetrics)

	_, err = Rank(weather.WeatherMetrics{PrecipitationProbability: ptr(math.NaN())}, nil)
	assert.ErrorIs(t, err, ErrInvalidMetrics)

	_, err = Rank(weather.WeatherMetrics{}, &weather.MarineMetrics{WaveHeight: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidMetrics)
}

func TestRankProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	for i := 0; i < 2000; i++ {
		wx := weather.WeatherMetrics{
			Temperature:   between(-60, 60),
			Precipitation: between(-5, 50),
			CloudCover:    between(-50, 200),
			WindSpeed:     between(-10, 60),
			Snowfall:      between(-5, 30),
			SnowDepth:     between(-10, 500),
		}
		if i%2 == 0 {
			wx.PrecipitationProbability = ptr(between(-50, 200))
		}
		sea := &weather.MarineMetrics{
			WaveHeight: between(-1, 15),
			WavePeriod: between(-1, 30),
		}

		r, err := Rank(wx, sea)
		require.NoError(t, err)

		seen := map[Activity]bool{}
		for j, s := range r {
			assert.GreaterOrEqual(t, s.Score, 0)
			assert.LessOrEqual(t, s.Score, 100)
			assert.False(t, seen[s.Activity], "duplicate %s", s.Activity)
			seen[s.Activity] = true
			if j > 0 {
				assert.GreaterOrEqual(t, r[j-1].Score, s.Score, "ranking not descending")
			}
		}
		assert.Len(t, seen, Count)

		again, err := Rank(wx, sea)
		require.NoError(t, err)
		assert.Equal(t, r, again)
	}
}

func TestSkiingColdIsMonotonic(t *testing.T) {
	prev := -1.0
	for temp := 4.0; temp >= -4; temp -= 0.25 {
		score := skiing(weather.WeatherMetrics{Temperature: temp, WindSpeed: 5})
		assert.GreaterOrEqual(t, score, prev, "skiing dropped at %v°C", temp)
		prev = score
	}
}

func TestSurfingWaveSizeIsMonotonic(t *testing.T) {
	prev := -1.0
	for height := 0.5; height <= 3; height += 0.1 {
		score := surfing(weather.WeatherMetrics{WindSpeed: 2}, weather.MarineMetrics{WaveHeight: height, WavePeriod: 10})
		assert.GreaterOrEqual(t, score, prev, "surfing dropped at %vm", height)
		prev = score
	}
}

func TestActivityText(t *testing.T) {
	for _, a := range All() {
		text, err := a.MarshalText()
		require.NoError(t, err)

		var decoded Activity
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, a, decoded)
	}

	assert.Equal(t, "Outdoor sightseeing", OutdoorSightseeing.String())
	assert.Error(t, new(Activity).UnmarshalText([]byte("Bowling")))
}
