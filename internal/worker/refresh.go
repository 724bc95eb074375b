package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/station"
)

// StationRefresher forces a new station snapshot.
type StationRefresher interface {
	Refresh(ctx context.Context) (*station.Directory, error)
}

// Recorder receives refresh and coverage measurements.
type Recorder interface {
	RecordRefresh(err error)
	SetCoverage(target string, distanceKm float64, reachable bool)
	ObserveUpstreams(health []*resilience.ProviderHealth)
}

// RefreshJob refreshes the station snapshot and measures coverage.
type RefreshJob struct {
	config   RefreshConfig
	logger   zerolog.Logger
	stations StationRefresher
	recorder Recorder
	upstream *resilience.Registry

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64

	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration

	LastStationCount int
	UncoveredTargets int
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config   RefreshConfig
	Logger   zerolog.Logger
	Stations StationRefresher

	// Recorder is optional.
	Recorder Recorder

	// Upstreams is optional; breaker states are forwarded to Recorder.
	Upstreams *resilience.Registry
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:   cfg.Config.withDefaults(),
		logger:   cfg.Logger,
		stations: cfg.Stations,
		recorder: cfg.Recorder,
		upstream: cfg.Upstreams,
		metrics:  &RefreshMetrics{},
	}
}

// TargetCoverage is the coverage measured for one target.
type TargetCoverage struct {
	Target string

	// WorstDistanceKm is the largest nearest-available distance over the
	// target's points. Zero when Reachable is false.
	WorstDistanceKm float64

	// Reachable is false when some point has no station with bikes at all.
	Reachable bool

	// Covered is true when every point is within MaxWalkKm of a bike.
	Covered bool

	// StationIDs holds the nearest available station per point, in point order.
	StationIDs []string
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Provider     string
	StationCount int
	Err          error

	Coverage []TargetCoverage
}

// Uncovered returns the names of targets with a point beyond walking range.
func (r *RefreshResult) Uncovered() []string {
	var names []string
	for _, c := range r.Coverage {
		if !c.Covered {
			names = append(names, c.Target)
		}
	}
	return names
}

// Run fetches a new snapshot and evaluates every coverage target against it.
// A failed fetch is reported in the result; coverage is then left empty.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	j.logger.Info().
		Int("targets", len(j.config.Targets)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting station refresh job")

	fetchCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	dir, err := j.stations.Refresh(fetchCtx)
	cancel()

	if j.recorder != nil {
		j.recorder.RecordRefresh(err)
		if j.upstream != nil {
			j.recorder.ObserveUpstreams(j.upstream.GetAllHealth())
		}
	}

	if err != nil {
		result.Err = err
		j.logger.Error().Err(err).Msg("station refresh failed")
	} else {
		result.Provider = dir.Provider()
		result.StationCount = dir.Len()
		result.Coverage = j.measure(ctx, dir)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("stations", result.StationCount).
		Strs("uncovered", result.Uncovered()).
		Bool("success", result.Err == nil).
		Msg("station refresh job completed")

	return result
}

func (j *RefreshJob) measure(ctx context.Context, dir *station.Directory) []TargetCoverage {
	targets := make([]CoverageTarget, len(j.config.Targets))
	copy(targets, j.config.Targets)
	sort.SliceStable(targets, func(a, b int) bool {
		return targets[a].Priority < targets[b].Priority
	})

	targetsChan := make(chan int, len(targets))
	coverage := make([]TargetCoverage, len(targets))
	done := make([]bool, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range targetsChan {
				if ctx.Err() != nil {
					continue
				}
				coverage[idx] = j.measureTarget(dir, targets[idx])
				done[idx] = true
			}
		}()
	}

	for i := range targets {
		targetsChan <- i
	}
	close(targetsChan)
	wg.Wait()

	measured := make([]TargetCoverage, 0, len(targets))
	for i, c := range coverage {
		if !done[i] {
			continue
		}
		if j.recorder != nil {
			j.recorder.SetCoverage(c.Target, c.WorstDistanceKm, c.Reachable)
		}
		measured = append(measured, c)
	}
	return measured
}

func (j *RefreshJob) measureTarget(dir *station.Directory, target CoverageTarget) TargetCoverage {
	c := TargetCoverage{
		Target:     target.Name,
		Reachable:  true,
		Covered:    true,
		StationIDs: make([]string, 0, len(target.Points)),
	}

	for _, p := range target.Points {
		nearest, ok := dir.NearestAvailable(p)
		if !ok {
			c.Reachable = false
			c.Covered = false
			c.StationIDs = append(c.StationIDs, "")
			continue
		}
		c.StationIDs = append(c.StationIDs, nearest.ID)
		if nearest.Distance > c.WorstDistanceKm {
			c.WorstDistanceKm = nearest.Distance
		}
		if nearest.Distance > j.config.MaxWalkKm {
			c.Covered = false
		}
	}
	if !c.Reachable {
		c.WorstDistanceKm = 0
	}
	return c
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	if result.Err != nil {
		j.metrics.FailedRuns++
	} else {
		j.metrics.SuccessfulRuns++
		j.metrics.LastStationCount = result.StationCount
		j.metrics.UncoveredTargets = len(result.Uncovered())
	}
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:           j.metrics.TotalRuns,
		SuccessfulRuns:      j.metrics.SuccessfulRuns,
		FailedRuns:          j.metrics.FailedRuns,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
		LastStationCount:    j.metrics.LastStationCount,
		UncoveredTargets:    j.metrics.UncoveredTargets,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":            m.TotalRuns,
		"successful_runs":       m.SuccessfulRuns,
		"failed_runs":           m.FailedRuns,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
		"last_station_count":    m.LastStationCount,
		"uncovered_targets":     m.UncoveredTargets,
	}
}
