package tuya

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

func decodeProps(t *testing.T, raw string) []DeviceProperty {
	t.Helper()
	var props []DeviceProperty
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		t.Fatalf("unmarshal props: %v", err)
	}
	return props
}

func TestMapProperties_Thermostat(t *testing.T) {
	observedAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	props := decodeProps(t, `[
		{"code":"temp_current","value":215},
		{"code":"temp_set","value":220},
		{"code":"switch","value":true}
	]`)

	obs, unknown := mapProperties(DeviceThermostat, props, observedAt)
	if len(unknown) != 0 {
		t.Fatalf("unknown = %v, want none", unknown)
	}
	if len(obs) != 3 {
		t.Fatalf("len(obs) = %d, want 3", len(obs))
	}

	// Thermostats report tenths of a degree.
	if obs[0].Kind != telemetry.KindTemperature || obs[0].Value.Number != 21.5 {
		t.Errorf("obs[0] = %+v, want temperature 21.5", obs[0])
	}
	if obs[1].Kind != telemetry.KindTemperatureSetpoint || obs[1].Value.Number != 22.0 {
		t.Errorf("obs[1] = %+v, want setpoint 22.0", obs[1])
	}
	if obs[2].Kind != telemetry.KindRelayState || !obs[2].Value.Bool {
		t.Errorf("obs[2] = %+v, want relay on", obs[2])
	}

	for i, o := range obs {
		if !o.ObservedAt.Equal(observedAt) {
			t.Errorf("obs[%d].ObservedAt = %v, want shared %v", i, o.ObservedAt, observedAt)
		}
	}
}

func TestMapProperties_WeatherStationNoScaling(t *testing.T) {
	props := decodeProps(t, `[
		{"code":"va_temperature","value":18},
		{"code":"va_humidity","value":55}
	]`)

	obs, _ := mapProperties(DeviceWeatherStation, props, time.Now())
	if len(obs) != 2 {
		t.Fatalf("len(obs) = %d, want 2", len(obs))
	}
	if obs[0].Value.Number != 18 {
		t.Errorf("temperature = %v, want 18 (no tenths scaling)", obs[0].Value.Number)
	}
	if obs[1].Kind != telemetry.KindHumidity || obs[1].Value.Number != 55 {
		t.Errorf("obs[1] = %+v, want humidity 55", obs[1])
	}
}

func TestMapProperties_EnergyMeterPowerScale(t *testing.T) {
	props := decodeProps(t, `[
		{"code":"cur_power","value":1234},
		{"code":"switch_1","value":false}
	]`)

	obs, _ := mapProperties(DeviceEnergyMeter, props, time.Now())
	if len(obs) != 2 {
		t.Fatalf("len(obs) = %d, want 2", len(obs))
	}

	// cur_power is reported in 0.1 W units.
	if obs[0].Kind != telemetry.KindPowerConsumption || obs[0].Value.Number != 123.4 {
		t.Errorf("obs[0] = %+v, want power 123.4", obs[0])
	}
	if obs[1].Kind != telemetry.KindRelayState || obs[1].Value.Bool {
		t.Errorf("obs[1] = %+v, want relay off", obs[1])
	}
}

func TestMapProperties_UnknownCodesSkipped(t *testing.T) {
	props := decodeProps(t, `[
		{"code":"doorcontact_state","value":true},
		{"code":"battery_state","value":"high"},
		{"code":"tamper_alarm","value":false}
	]`)

	obs, unknown := mapProperties(DeviceWeatherStation, props, time.Now())
	if len(obs) != 1 || obs[0].Kind != telemetry.KindDoorOpen {
		t.Fatalf("obs = %+v, want single door_open", obs)
	}
	if len(unknown) != 2 {
		t.Errorf("unknown = %v, want [battery_state tamper_alarm]", unknown)
	}
}

func TestMapProperties_ShapeMismatchIsUnknown(t *testing.T) {
	// A boolean where a number is expected is skipped, not fatal.
	props := decodeProps(t, `[{"code":"temp_current","value":true}]`)

	obs, unknown := mapProperties(DeviceThermostat, props, time.Now())
	if len(obs) != 0 {
		t.Errorf("obs = %+v, want none", obs)
	}
	if len(unknown) != 1 || unknown[0] != "temp_current" {
		t.Errorf("unknown = %v, want [temp_current]", unknown)
	}
}

func TestCommandForKind(t *testing.T) {
	tests := []struct {
		name       string
		deviceType DeviceType
		kind       telemetry.SensorKind
		value      telemetry.Value
		wantOK     bool
		wantJSON   string
	}{
		{
			name:       "thermostat relay",
			deviceType: DeviceThermostat,
			kind:       telemetry.KindRelayState,
			value:      telemetry.BoolValue(true),
			wantOK:     true,
			wantJSON:   `{"code":"switch","value":true}`,
		},
		{
			name:       "energy meter relay uses switch_1",
			deviceType: DeviceEnergyMeter,
			kind:       telemetry.KindRelayState,
			value:      telemetry.BoolValue(false),
			wantOK:     true,
			wantJSON:   `{"code":"switch_1","value":false}`,
		},
		{
			name:       "thermostat setpoint scaled to tenths",
			deviceType: DeviceThermostat,
			kind:       telemetry.KindTemperatureSetpoint,
			value:      telemetry.NumberValue(21.5),
			wantOK:     true,
			wantJSON:   `{"code":"temp_set","value":215}`,
		},
		{
			name:       "relay with numeric value rejected",
			deviceType: DeviceThermostat,
			kind:       telemetry.KindRelayState,
			value:      telemetry.NumberValue(1),
			wantOK:     false,
		},
		{
			name:       "read-only kind rejected",
			deviceType: DeviceWeatherStation,
			kind:       telemetry.KindTemperature,
			value:      telemetry.NumberValue(20),
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := commandForKind(tt.deviceType, tt.kind, tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			data, err := json.Marshal(cmd)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.wantJSON {
				t.Errorf("command = %s, want %s", data, tt.wantJSON)
			}
		})
	}
}
