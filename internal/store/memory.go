package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/activity-ranking/internal/weather"
)

var (
	// ErrNotFound is returned when no probe matches for an upstream.
	ErrNotFound = errors.New("no probe results for upstream")
)

// ProbeFilter selects probe results. Zero fields do not filter.
type ProbeFilter struct {
	From time.Time
	To   time.Time

	// OK keeps only successful (true) or only failed (false) probes.
	OK *bool

	// MinLatency keeps probes at least this slow.
	MinLatency time.Duration
}

func (f ProbeFilter) match(r weather.ProbeResult) bool {
	if !f.From.IsZero() && r.CheckedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.CheckedAt.After(f.To) {
		return false
	}
	if f.OK != nil && r.OK != *f.OK {
		return false
	}
	return r.Latency >= f.MinLatency
}

// ProbeSummary describes the health of an upstream over a set of probes.
type ProbeSummary struct {
	Total        int           `json:"total"`
	Failures     int           `json:"failures"`
	Availability float64       `json:"availability"` // share of successful probes, 0..1
	MeanLatency  time.Duration `json:"meanLatencyNs"`
	MaxLatency   time.Duration `json:"maxLatencyNs"`
	LastFailure  *time.Time    `json:"lastFailure,omitempty"`
}

// Summarize aggregates probe results, which must be ordered oldest first.
func Summarize(results []weather.ProbeResult) ProbeSummary {
	var (
		s     ProbeSummary
		total time.Duration
	)
	for _, r := range results {
		s.Total++
		total += r.Latency
		if r.Latency > s.MaxLatency {
			s.MaxLatency = r.Latency
		}
		if !r.OK {
			s.Failures++
			at := r.CheckedAt
			s.LastFailure = &at
		}
	}
	if s.Total > 0 {
		s.Availability = float64(s.Total-s.Failures) / float64(s.Total)
		s.MeanLatency = total / time.Duration(s.Total)
	}
	return s
}

// MemoryStore keeps recent upstream probe results per upstream, in memory.
// Forecast data is never stored.
type MemoryStore struct {
	mu     sync.RWMutex
	probes map[string][]weather.ProbeResult

	limit  int           // results kept per upstream, <= 0 for unlimited
	maxAge time.Duration // results older than this are dropped, 0 to keep

	now func() time.Time
}

// NewMemoryStore creates a store with the given per-upstream retention.
func NewMemoryStore(limit int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		probes: make(map[string][]weather.ProbeResult),
		limit:  limit,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveProbe records a probe result under its upstream. Results are kept in
// CheckedAt order and the newest result always survives retention.
func (s *MemoryStore) SaveProbe(result weather.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.probes[result.Upstream]
	at := sort.Search(len(list), func(i int) bool {
		return list[i].CheckedAt.After(result.CheckedAt)
	})
	list = append(list, weather.ProbeResult{})
	copy(list[at+1:], list[at:])
	list[at] = result

	s.probes[result.Upstream] = s.prune(list)
}

func (s *MemoryStore) prune(list []weather.ProbeResult) []weather.ProbeResult {
	if s.limit > 0 && len(list) > s.limit {
		list = list[len(list)-s.limit:]
	}
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		keep := sort.Search(len(list)-1, func(i int) bool {
			return !list[i].CheckedAt.Before(cutoff)
		})
		list = list[keep:]
	}
	return list
}

// GetLatest returns the most recent probe result for an upstream.
func (s *MemoryStore) GetLatest(upstream string) (weather.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.probes[upstream]
	if len(list) == 0 {
		return weather.ProbeResult{}, ErrNotFound
	}
	return list[len(list)-1], nil
}

// Query returns the probe results of an upstream matching f, oldest first.
func (s *MemoryStore) Query(upstream string, f ProbeFilter) ([]weather.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.ProbeResult
	for _, r := range s.probes[upstream] {
		if f.match(r) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Upstreams returns the names of all upstreams with recorded probes, sorted.
func (s *MemoryStore) Upstreams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.probes))
	for name := range s.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
