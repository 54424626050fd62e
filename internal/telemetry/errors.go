package telemetry

import "errors"

// Sentinel errors for the telemetry package.
// Check with errors.Is() in calling code.
var (
	// ErrUnknownSensorKind is returned when a string does not name a kind
	// in the closed enumeration.
	ErrUnknownSensorKind = errors.New("telemetry: unknown sensor kind")

	// ErrInvalidValueKind is returned by Encode when the value's shape
	// (boolean vs numeric) does not match what the sensor kind expects.
	ErrInvalidValueKind = errors.New("telemetry: value shape does not match sensor kind")

	// ErrDuplicateReading is returned when inserting a reading whose
	// (device, kind, timestamp) triple already exists. Duplicate writes
	// are rejected, never overwritten.
	ErrDuplicateReading = errors.New("telemetry: duplicate reading")
)
