package control

import (
	"context"

	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// CommandSender issues actuator writes to the vendor API.
type CommandSender interface {
	SendCommand(ctx context.Context, deviceID string, kind telemetry.SensorKind, value telemetry.Value) error
}

// Logger defines the logging interface for the control service.
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

// Service runs every policy once per cycle against the reading cache.
type Service struct {
	sender   CommandSender
	cache    *telemetry.ReadingCache
	policies []Policy
	logger   Logger

	// awaitingData tracks devices already reported as missing the
	// readings their policy needs, so startup does not repeat the same
	// message every cycle.
	awaitingData map[string]bool
}

// New creates a control service.
func New(sender CommandSender, cache *telemetry.ReadingCache, policies []Policy) *Service {
	return &Service{
		sender:       sender,
		cache:        cache,
		policies:     policies,
		logger:       noopLogger{},
		awaitingData: make(map[string]bool),
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Cycle evaluates every policy and sends whatever commands they decide.
//
// A failed send is logged and never blocks the remaining policies. An
// empty cache produces zero commands.
func (s *Service) Cycle(ctx context.Context) error {
	for _, policy := range s.policies {
		if err := ctx.Err(); err != nil {
			return err
		}

		deviceID := policy.DeviceID()
		state := s.cache.GetDevice(deviceID)
		if !policy.Ready(state) {
			if !s.awaitingData[deviceID] {
				s.awaitingData[deviceID] = true
				s.logger.Info("required readings not cached yet, skipping device", "device_id", deviceID)
			}
			continue
		}
		delete(s.awaitingData, deviceID)

		cmd, ok := policy.Evaluate(state)
		if !ok {
			continue
		}

		if err := s.sender.SendCommand(ctx, cmd.DeviceID, cmd.Kind, cmd.Value); err != nil {
			s.logger.Warn("command send failed",
				"device_id", cmd.DeviceID,
				"kind", cmd.Kind,
				"error", err,
			)
			continue
		}

		s.logger.Info("command sent",
			"device_id", cmd.DeviceID,
			"kind", cmd.Kind,
			"value", cmd.Value.String(),
		)
	}

	return nil
}
