package tuya

import (
	"math"
	"time"

	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// DP scale divisors observed per device family. Thermostats report
// temperatures in tenths of a degree; energy meters report cur_power in
// tenths of a watt.
const (
	tenths = 10.0
)

// mapProperties converts raw DPs into decoded observations.
//
// Unknown DP codes are returned separately so the caller can log them;
// they never fail the fetch. All observations from one status response
// share the envelope timestamp.
func mapProperties(deviceType DeviceType, props []DeviceProperty, observedAt time.Time) (obs []telemetry.Observation, unknown []string) {
	for _, dp := range props {
		o, ok := mapProperty(deviceType, dp, observedAt)
		if !ok {
			unknown = append(unknown, dp.Code)
			continue
		}
		obs = append(obs, o)
	}
	return obs, unknown
}

// mapProperty maps one DP code to a (kind, value) pair.
func mapProperty(deviceType DeviceType, dp DeviceProperty, observedAt time.Time) (telemetry.Observation, bool) {
	var (
		kind  telemetry.SensorKind
		value telemetry.Value
	)

	switch dp.Code {
	case "temp_current", "va_temperature":
		n, ok := dp.Value.AsFloat64()
		if !ok {
			return telemetry.Observation{}, false
		}
		if deviceType == DeviceThermostat {
			n /= tenths
		}
		kind, value = telemetry.KindTemperature, telemetry.NumberValue(n)

	case "humidity_value", "va_humidity":
		n, ok := dp.Value.AsFloat64()
		if !ok {
			return telemetry.Observation{}, false
		}
		kind, value = telemetry.KindHumidity, telemetry.NumberValue(n)

	case "doorcontact_state":
		b, ok := dp.Value.AsBool()
		if !ok {
			return telemetry.Observation{}, false
		}
		kind, value = telemetry.KindDoorOpen, telemetry.BoolValue(b)

	case "cur_power":
		// Reported in units of 0.1 W.
		n, ok := dp.Value.AsFloat64()
		if !ok {
			return telemetry.Observation{}, false
		}
		kind, value = telemetry.KindPowerConsumption, telemetry.NumberValue(n/tenths)

	case "switch", "switch_1":
		b, ok := dp.Value.AsBool()
		if !ok {
			return telemetry.Observation{}, false
		}
		kind, value = telemetry.KindRelayState, telemetry.BoolValue(b)

	case "temp_set":
		n, ok := dp.Value.AsFloat64()
		if !ok {
			return telemetry.Observation{}, false
		}
		if deviceType == DeviceThermostat {
			n /= tenths
		}
		kind, value = telemetry.KindTemperatureSetpoint, telemetry.NumberValue(n)

	default:
		return telemetry.Observation{}, false
	}

	return telemetry.Observation{Kind: kind, Value: value, ObservedAt: observedAt}, true
}

// commandForKind builds the DP write for an actuator command.
//
// Only the two writable kinds are supported; everything else is a
// read-only measurement.
func commandForKind(deviceType DeviceType, kind telemetry.SensorKind, value telemetry.Value) (command, bool) {
	switch kind {
	case telemetry.KindRelayState:
		if !value.IsBool {
			return command{}, false
		}
		code := "switch"
		if deviceType == DeviceEnergyMeter {
			code = "switch_1"
		}
		return command{Code: code, Value: BoolDP(value.Bool)}, true

	case telemetry.KindTemperatureSetpoint:
		if value.IsBool {
			return command{}, false
		}
		n := value.Number
		if deviceType == DeviceThermostat {
			n *= tenths
		}
		return command{Code: "temp_set", Value: IntDP(int64(math.Round(n)))}, true

	default:
		return command{}, false
	}
}
