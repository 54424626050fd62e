package control

import (
	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// Command is one actuator write decided by a policy.
type Command struct {
	DeviceID string
	Kind     telemetry.SensorKind
	Value    telemetry.Value
}

// Policy decides whether a device needs actuation given its latest
// cached readings.
type Policy interface {
	// DeviceID identifies the device this policy controls.
	DeviceID() string

	// Ready reports whether the cached state carries the entries the
	// policy needs to make a decision. Devices that are not ready are
	// skipped and reported once, not every cycle.
	Ready(state map[telemetry.SensorKind]telemetry.CacheEntry) bool

	// Evaluate inspects the device's cached state and returns a
	// command when actuation is needed. ok is false when no change is
	// required.
	Evaluate(state map[telemetry.SensorKind]telemetry.CacheEntry) (cmd Command, ok bool)
}

// ThermostatPolicy drives a heating relay with a hysteresis band
// around a setpoint.
//
// The relay turns on below setpoint minus hysteresis and off above
// setpoint plus hysteresis; inside the band it holds its last state.
// A setpoint reported by the device overrides the configured one. No
// command is issued when the relay is already in the desired state,
// so a healthy system goes quiet between temperature swings.
type ThermostatPolicy struct {
	deviceID   string
	setpoint   float64
	hysteresis float64
}

// NewThermostatPolicy creates a hysteresis policy for one thermostat.
func NewThermostatPolicy(deviceID string, setpoint, hysteresis float64) *ThermostatPolicy {
	return &ThermostatPolicy{
		deviceID:   deviceID,
		setpoint:   setpoint,
		hysteresis: hysteresis,
	}
}

// DeviceID identifies the controlled thermostat.
func (p *ThermostatPolicy) DeviceID() string { return p.deviceID }

// Ready reports whether a numeric temperature has been cached, the one
// reading the hysteresis decision cannot run without.
func (p *ThermostatPolicy) Ready(state map[telemetry.SensorKind]telemetry.CacheEntry) bool {
	temp, ok := state[telemetry.KindTemperature]
	return ok && !temp.Value.IsBool
}

// Evaluate applies the hysteresis band to the cached temperature.
func (p *ThermostatPolicy) Evaluate(state map[telemetry.SensorKind]telemetry.CacheEntry) (Command, bool) {
	temp, ok := state[telemetry.KindTemperature]
	if !ok || temp.Value.IsBool {
		return Command{}, false
	}

	setpoint := p.setpoint
	if sp, ok := state[telemetry.KindTemperatureSetpoint]; ok && !sp.Value.IsBool {
		setpoint = sp.Value.Number
	}

	var desired bool
	switch {
	case temp.Value.Number < setpoint-p.hysteresis:
		desired = true
	case temp.Value.Number > setpoint+p.hysteresis:
		desired = false
	default:
		// Inside the band: hold.
		return Command{}, false
	}

	if relay, ok := state[telemetry.KindRelayState]; ok && relay.Value.IsBool && relay.Value.Bool == desired {
		return Command{}, false
	}

	return Command{
		DeviceID: p.deviceID,
		Kind:     telemetry.KindRelayState,
		Value:    telemetry.BoolValue(desired),
	}, true
}
