package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// Job types accepted by the Dispatcher.
const (
	JobStationRefresh = "station_refresh"
	JobHealthCheck    = "health_check"
)

// RefreshMessage is the JSON payload of a worker job.
type RefreshMessage struct {
	JobType string `json:"job_type"`

	// RequireCoverage fails the job when any target is out of walking range.
	RequireCoverage bool `json:"require_coverage,omitempty"`
}

type jobFunc func(ctx context.Context, msg RefreshMessage) error

// Dispatcher decodes job messages and runs them, whatever transport
// delivered them.
type Dispatcher struct {
	jobs   map[string]jobFunc
	logger zerolog.Logger
}

// NewDispatcher routes station_refresh to job and runs health checks
// against the same station source.
func NewDispatcher(job *RefreshJob, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{logger: logger}
	d.jobs = map[string]jobFunc{
		JobStationRefresh: func(ctx context.Context, msg RefreshMessage) error {
			return refreshStations(ctx, job, msg.RequireCoverage)
		},
		JobHealthCheck: func(ctx context.Context, _ RefreshMessage) error {
			return probeFeed(ctx, job.stations, logger)
		},
	}
	return d
}

// Dispatch runs the job in data and reports whether the message should be
// acknowledged. Undecodable payloads and failed jobs return false so the
// broker redelivers them; unknown job types return true since a retry
// cannot succeed.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) bool {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		d.logger.Error().Err(err).Int("bytes", len(data)).Msg("undecodable job message")
		return false
	}

	log := d.logger.With().Str("job_type", msg.JobType).Logger()
	run, ok := d.jobs[msg.JobType]
	if !ok {
		log.Warn().Msg("dropping unknown job type")
		return true
	}

	started := time.Now()
	if err := run(ctx, msg); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(started)).Msg("job failed")
		return false
	}
	log.Info().Dur("duration", time.Since(started)).Msg("job completed")
	return true
}

func refreshStations(ctx context.Context, job *RefreshJob, requireCoverage bool) error {
	result := job.Run(ctx)
	if result.Err != nil {
		return fmt.Errorf("refresh stations: %w", result.Err)
	}
	if uncovered := result.Uncovered(); requireCoverage && len(uncovered) > 0 {
		return fmt.Errorf("%d coverage targets out of walking range: %v", len(uncovered), uncovered)
	}
	return nil
}

// probeFeed fetches the feed once and checks a single point at City Hall,
// which is enough to prove the upstream is serving data.
func probeFeed(ctx context.Context, stations StationRefresher, logger zerolog.Logger) error {
	probe := NewRefreshJob(RefreshJobConfig{
		Config: RefreshConfig{
			Targets:     []CoverageTarget{{Name: "health-check", Points: []geo.Coordinates{{Lat: 36.3504, Lon: 127.3845}}}},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Logger:   logger,
		Stations: stations,
	})

	result := probe.Run(ctx)
	switch {
	case result.Err != nil:
		return fmt.Errorf("health check: %w", result.Err)
	case result.StationCount == 0:
		return errors.New("health check: empty station snapshot")
	}
	return nil
}
