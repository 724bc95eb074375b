package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/internal/station/tashu"
	"github.com/tashuroute/tashuroute/internal/worker"
)

func newDispatcher(stations *fakeStations, targets ...worker.CoverageTarget) *worker.Dispatcher {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:   testConfig(targets...),
		Logger:   zerolog.Nop(),
		Stations: stations,
	})
	return worker.NewDispatcher(job, zerolog.Nop())
}

func TestDispatcher_Dispatch(t *testing.T) {
	hall := worker.CoverageTarget{Name: "hall", Points: []geo.Coordinates{cityHall}}
	outskirts := worker.CoverageTarget{Name: "outskirts", Points: []geo.Coordinates{{Lat: 36.45, Lon: 127.30}}}

	tests := []struct {
		name      string
		stations  *fakeStations
		targets   []worker.CoverageTarget
		payload   string
		wantAck   bool
		wantCalls int
	}{
		{
			name:      "station refresh",
			stations:  &fakeStations{stations: tashu.DemoStations()},
			targets:   []worker.CoverageTarget{hall},
			payload:   `{"job_type":"station_refresh"}`,
			wantAck:   true,
			wantCalls: 1,
		},
		{
			name:      "station refresh failure is redelivered",
			stations:  &fakeStations{err: station.ErrProviderUnavailable},
			targets:   []worker.CoverageTarget{hall},
			payload:   `{"job_type":"station_refresh"}`,
			wantAck:   false,
			wantCalls: 1,
		},
		{
			name:      "uncovered target tolerated by default",
			stations:  &fakeStations{stations: tashu.DemoStations()},
			targets:   []worker.CoverageTarget{outskirts},
			payload:   `{"job_type":"station_refresh"}`,
			wantAck:   true,
			wantCalls: 1,
		},
		{
			name:      "uncovered target fails when coverage required",
			stations:  &fakeStations{stations: tashu.DemoStations()},
			targets:   []worker.CoverageTarget{hall, outskirts},
			payload:   `{"job_type":"station_refresh","require_coverage":true}`,
			wantAck:   false,
			wantCalls: 1,
		},
		{
			name:      "health check",
			stations:  &fakeStations{stations: tashu.DemoStations()},
			payload:   `{"job_type":"health_check"}`,
			wantAck:   true,
			wantCalls: 1,
		},
		{
			name:      "health check with empty snapshot",
			stations:  &fakeStations{},
			payload:   `{"job_type":"health_check"}`,
			wantAck:   false,
			wantCalls: 1,
		},
		{
			name:      "health check failure",
			stations:  &fakeStations{err: errors.New("connection refused")},
			payload:   `{"job_type":"health_check"}`,
			wantAck:   false,
			wantCalls: 1,
		},
		{
			name:     "unknown job type is acknowledged",
			stations: &fakeStations{stations: tashu.DemoStations()},
			payload:  `{"job_type":"provider_refresh"}`,
			wantAck:  true,
		},
		{
			name:     "malformed message is redelivered",
			stations: &fakeStations{stations: tashu.DemoStations()},
			payload:  `{not json`,
			wantAck:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(tt.stations, tt.targets...)

			ack := d.Dispatch(context.Background(), []byte(tt.payload))

			assert.Equal(t, tt.wantAck, ack)
			assert.Equal(t, tt.wantCalls, tt.stations.calls)
		})
	}
}
