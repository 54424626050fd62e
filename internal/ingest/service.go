package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// Gateway fetches current readings from the vendor API.
type Gateway interface {
	FetchReadings(ctx context.Context, deviceID string) ([]telemetry.Observation, error)
}

// Store persists readings and serves the warm-start query.
type Store interface {
	InsertReading(ctx context.Context, reading telemetry.SensorReading) error
	LatestReadings(ctx context.Context) ([]telemetry.SensorReading, error)
}

// Publisher fans accepted readings out to a message broker.
type Publisher interface {
	PublishReading(deviceID string, kind telemetry.SensorKind, value telemetry.Value, observedAt time.Time) error
}

// MetricsWriter mirrors accepted readings to a time-series store.
type MetricsWriter interface {
	WriteReading(deviceID string, kind telemetry.SensorKind, value telemetry.Value, observedAt time.Time)
}

// Logger defines the logging interface for the ingest service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Service drives one polling cycle across all configured devices.
//
// Publisher and MetricsWriter are optional; pass nil to disable.
type Service struct {
	gateway   Gateway
	store     Store
	cache     *telemetry.ReadingCache
	deviceIDs []string
	publisher Publisher
	metrics   MetricsWriter
	logger    Logger
}

// New creates an ingest service for the given devices.
func New(gateway Gateway, store Store, cache *telemetry.ReadingCache, deviceIDs []string) *Service {
	return &Service{
		gateway:   gateway,
		store:     store,
		cache:     cache,
		deviceIDs: deviceIDs,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetPublisher enables broker fan-out of accepted readings.
func (s *Service) SetPublisher(p Publisher) { s.publisher = p }

// SetMetricsWriter enables time-series mirroring of accepted readings.
func (s *Service) SetMetricsWriter(w MetricsWriter) { s.metrics = w }

// WarmCache seeds the cache with the most recent stored reading per
// device and kind, so the query surface is useful before the first poll.
func (s *Service) WarmCache(ctx context.Context) error {
	readings, err := s.store.LatestReadings(ctx)
	if err != nil {
		return fmt.Errorf("warming cache: %w", err)
	}

	for _, r := range readings {
		value := telemetry.Decode(r.Kind, r.Value)
		s.cache.Update(r.DeviceID, r.Kind, value, r.RecordedAt)
	}

	s.logger.Info("cache warmed from store", "entries", len(readings))
	return nil
}

// Cycle polls every device once.
//
// A device that fails to poll is logged and skipped; the cycle reports
// an error only when no device could be polled at all.
func (s *Service) Cycle(ctx context.Context) error {
	failed := 0

	for _, deviceID := range s.deviceIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		obs, err := s.gateway.FetchReadings(ctx, deviceID)
		if err != nil {
			failed++
			s.logger.Warn("device poll failed", "device_id", deviceID, "error", err)
			continue
		}

		for _, o := range obs {
			s.ingestObservation(ctx, deviceID, o)
		}

		s.logger.Debug("device polled", "device_id", deviceID, "readings", len(obs))
	}

	if len(s.deviceIDs) > 0 && failed == len(s.deviceIDs) {
		return fmt.Errorf("all %d devices failed to poll", failed)
	}

	return nil
}

// ingestObservation persists one observation and refreshes the cache.
//
// A duplicate row is benign and the cache still advances; any other
// store error drops the observation without touching the cache, so the
// cache never leads durable history.
func (s *Service) ingestObservation(ctx context.Context, deviceID string, o telemetry.Observation) {
	encoded, err := telemetry.Encode(o.Kind, o.Value)
	if err != nil {
		s.logger.Warn("dropping malformed observation",
			"device_id", deviceID,
			"kind", o.Kind,
			"error", err,
		)
		return
	}

	reading := telemetry.SensorReading{
		DeviceID:   deviceID,
		Kind:       o.Kind,
		RecordedAt: o.ObservedAt,
		Value:      encoded,
	}

	if err := s.store.InsertReading(ctx, reading); err != nil {
		if !errors.Is(err, telemetry.ErrDuplicateReading) {
			s.logger.Error("persisting reading failed",
				"device_id", deviceID,
				"kind", o.Kind,
				"error", err,
			)
			return
		}
		s.logger.Debug("duplicate reading", "device_id", deviceID, "kind", o.Kind)
	}

	if !s.cache.Update(deviceID, o.Kind, o.Value, o.ObservedAt) {
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReading(deviceID, o.Kind, o.Value, o.ObservedAt); err != nil {
			s.logger.Warn("publishing reading failed",
				"device_id", deviceID,
				"kind", o.Kind,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.WriteReading(deviceID, o.Kind, o.Value, o.ObservedAt)
	}
}
