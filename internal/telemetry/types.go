package telemetry

import (
	"fmt"
	"strconv"
	"time"
)

// SensorKind identifies a measurement or actuation channel on a device.
//
// The set is closed: every kind maps to exactly one value representation
// (fixed-point number or boolean), and the persistence schema stores the
// kind as its snake_case string form.
type SensorKind string

const (
	KindTemperature         SensorKind = "temperature"
	KindHumidity            SensorKind = "humidity"
	KindDoorOpen            SensorKind = "door_open"
	KindPowerConsumption    SensorKind = "power_consumption"
	KindRelayState          SensorKind = "relay_state"
	KindTemperatureSetpoint SensorKind = "temperature_setpoint"
)

// SensorKinds lists every known kind in declaration order.
var SensorKinds = []SensorKind{
	KindTemperature,
	KindHumidity,
	KindDoorOpen,
	KindPowerConsumption,
	KindRelayState,
	KindTemperatureSetpoint,
}

// ParseSensorKind converts a string to a SensorKind.
// Returns ErrUnknownSensorKind for values outside the closed set.
func ParseSensorKind(s string) (SensorKind, error) {
	for _, k := range SensorKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSensorKind, s)
}

// Boolean reports whether the kind carries a boolean value.
// All other kinds carry fixed-point numeric values.
func (k SensorKind) Boolean() bool {
	switch k {
	case KindDoorOpen, KindRelayState:
		return true
	default:
		return false
	}
}

// String returns the snake_case form used on the wire and in storage.
func (k SensorKind) String() string {
	return string(k)
}

// Value is a decoded real-world reading: either a fixed-point number
// (hundredths precision) or a boolean, depending on the sensor kind.
//
// Construct values with NumberValue or BoolValue; the zero Value is a
// numeric zero.
type Value struct {
	// Number holds the reading for numeric kinds.
	Number float64 `json:"number,omitempty"`

	// Bool holds the reading for boolean kinds.
	Bool bool `json:"bool,omitempty"`

	// IsBool reports which field carries the reading.
	IsBool bool `json:"is_bool"`
}

// NumberValue wraps a numeric reading.
func NumberValue(v float64) Value {
	return Value{Number: v}
}

// BoolValue wraps a boolean reading.
func BoolValue(v bool) Value {
	return Value{Bool: v, IsBool: true}
}

// String renders the value for logging.
func (v Value) String() string {
	if v.IsBool {
		return strconv.FormatBool(v.Bool)
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// SensorReading is an immutable persisted fact: one observation of one
// sensor kind on one device. Value holds the encoded integer form; see
// the package documentation for the encoding convention.
type SensorReading struct {
	// ID is the auto-incremented primary key assigned at insert time.
	ID int64 `json:"id"`

	// DeviceID is the opaque vendor identifier of the device.
	DeviceID string `json:"device_id"`

	// Kind is the measurement channel this reading belongs to.
	Kind SensorKind `json:"sensor_kind"`

	// RecordedAt is the observation instant (UTC). Timestamps are unique
	// per (DeviceID, Kind) at persistence time.
	RecordedAt time.Time `json:"recorded_at"`

	// Value is the encoded integer form of the reading.
	Value int64 `json:"value"`
}

// Observation is a decoded reading as produced by the vendor gateway,
// before encoding and persistence.
type Observation struct {
	Kind       SensorKind
	Value      Value
	ObservedAt time.Time
}

// CacheEntry is the latest decoded reading for one (device, kind) pair.
type CacheEntry struct {
	// Value is the decoded reading.
	Value Value `json:"value"`

	// ObservedAt is when the reading was observed at the device (UTC).
	ObservedAt time.Time `json:"observed_at"`
}

// Key identifies a cache entry: one sensor kind on one device.
type Key struct {
	DeviceID string
	Kind     SensorKind
}
