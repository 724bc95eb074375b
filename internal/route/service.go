package route

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/station"
)

const tracerName = "github.com/tashuroute/tashuroute/internal/route"

// DirectorySource provides the current station snapshot.
type DirectorySource interface {
	Directory(ctx context.Context) (*station.Directory, error)
}

// ServiceConfig holds configuration for the route service.
type ServiceConfig struct {
	Stations DirectorySource
	Logger   zerolog.Logger
}

// Service plans routes against the current station snapshot.
type Service struct {
	stations DirectorySource
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewService creates a new route service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		stations: cfg.Stations,
		logger:   cfg.Logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Plan plans a route against the current snapshot. A nil route with a nil
// error means no suitable station exists. Station feed failures are returned
// unchanged.
func (s *Service) Plan(ctx context.Context, start, destination geo.Coordinates) (*Route, error) {
	ctx, span := s.tracer.Start(ctx, "route.Plan", trace.WithAttributes(
		attribute.Float64("route.start.lat", start.Lat),
		attribute.Float64("route.start.lon", start.Lon),
		attribute.Float64("route.destination.lat", destination.Lat),
		attribute.Float64("route.destination.lon", destination.Lon),
	))
	defer span.End()

	dir, err := s.stations.Directory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "station directory unavailable")
		return nil, err
	}

	r, err := Plan(start, destination, dir.Stations())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if r == nil {
		span.SetAttributes(attribute.Bool("route.found", false))
		s.logger.Debug().
			Int("stations", dir.Len()).
			Msg("no route: no station with bikes")
		return nil, nil
	}

	span.SetAttributes(
		attribute.Bool("route.found", true),
		attribute.String("route.start_station", r.StartStation.ID),
		attribute.String("route.end_station", r.EndStation.ID),
		attribute.Int("route.duration_min", r.TotalDurationMin),
	)
	return r, nil
}
