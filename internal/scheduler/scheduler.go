package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/activity-ranking/internal/common"
	"github.com/i474232898/activity-ranking/internal/weather"
)

const probeTimeout = 30 * time.Second

// Prober checks an upstream end to end for a location.
type Prober interface {
	Probe(ctx context.Context, loc weather.Location) weather.ProbeResult
}

// Recorder stores probe results.
type Recorder interface {
	SaveProbe(result weather.ProbeResult)
}

// Scheduler periodically probes the forecast upstream and records the outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	recorder  Recorder
	location  weather.Location
	interval  time.Duration
}

// New creates a new Scheduler. An interval <= 0 disables probing.
func New(location weather.Location, interval time.Duration, prober Prober, recorder Recorder) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		recorder:  recorder,
		location:  location,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	logger := common.Logger("scheduler")
	if s.interval <= 0 {
		logger.Info("probe interval is zero; upstream probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes the upstream a single time and records the result.
func (s *Scheduler) RunOnce(ctx context.Context) weather.ProbeResult {
	logger := common.Logger("scheduler").WithField("location", s.location.Key())

	res := s.prober.Probe(ctx, s.location)
	s.recorder.SaveProbe(res)

	if res.OK {
		logger.WithField("latency", res.Latency).Debug("upstream probe succeeded")
	} else {
		logger.WithField("error", res.Error).Warn("upstream probe failed")
	}
	return res
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
