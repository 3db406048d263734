// Package activity scores how suitable a week of forecast weather is for a
// fixed set of activities.
package activity

import "fmt"

// Activity is one of the four ranked activities. The zero value is Skiing.
type Activity int

const (
	Skiing Activity = iota
	Surfing
	OutdoorSightseeing
	IndoorSightseeing

	// Count is the number of activities; every Ranking holds exactly this many.
	Count = 4
)

var labels = [Count]string{
	Skiing:             "Skiing",
	Surfing:            "Surfing",
	OutdoorSightseeing: "Outdoor sightseeing",
	IndoorSightseeing:  "Indoor sightseeing",
}

// All returns the activities in their fixed priority order.
func All() [Count]Activity {
	return [Count]Activity{Skiing, Surfing, OutdoorSightseeing, IndoorSightseeing}
}

// String returns the display label.
func (a Activity) String() string {
	if a < 0 || int(a) >= Count {
		return fmt.Sprintf("Activity(%d)", int(a))
	}
	return labels[a]
}

// MarshalText encodes the activity as its display label.
func (a Activity) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= Count {
		return nil, fmt.Errorf("unknown activity %d", int(a))
	}
	return []byte(labels[a]), nil
}

// UnmarshalText decodes a display label.
func (a *Activity) UnmarshalText(text []byte) error {
	for i, l := range labels {
		if l == string(text) {
			*a = Activity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown activity %q", string(text))
}

// Score is the suitability of one activity, an integer in [0, 100].
type Score struct {
	Activity Activity `json:"activity"`
	Score    int      `json:"score"`
}

// Ranking holds every activity exactly once, best first.
type Ranking [Count]Score

// Scores returns the ranking as a slice.
func (r Ranking) Scores() []Score {
	out := make([]Score, Count)
	copy(out, r[:])
	return out
}
