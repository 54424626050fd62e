package tuya

import (
	"encoding/json"
	"fmt"
)

// DeviceType selects the polling endpoint and DP scale rules for a device.
type DeviceType string

const (
	DeviceThermostat     DeviceType = "thermostat"
	DeviceEnergyMeter    DeviceType = "energy_meter"
	DeviceWeatherStation DeviceType = "weather_station"
)

// ParseDeviceType converts a string to a DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	switch DeviceType(s) {
	case DeviceThermostat, DeviceEnergyMeter, DeviceWeatherStation:
		return DeviceType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDeviceType, s)
	}
}

// envelope is the outer object every Tuya Cloud response is wrapped in.
//
// Success:
//
//	{"success": true, "t": 1545447665981, "result": <payload>, "tid": "..."}
//
// Failure:
//
//	{"success": false, "t": 1561348644346, "code": 2009, "msg": "...", "tid": "..."}
//
// result is absent on failure; code and msg are absent on success. t is a
// 13-digit Unix timestamp in milliseconds.
type envelope struct {
	Success bool            `json:"success"`
	T       int64           `json:"t"`
	TID     string          `json:"tid,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Code    int             `json:"code,omitempty"`
	Msg     string          `json:"msg,omitempty"`
}

// intoResult unwraps the envelope, mapping API-level failures to *APIError.
func (e *envelope) intoResult() (json.RawMessage, error) {
	if !e.Success {
		return nil, &APIError{Code: e.Code, Msg: e.Msg, TID: e.TID}
	}
	if e.Result == nil {
		return nil, fmt.Errorf("%w: success=true but result is missing", ErrRequestFailed)
	}
	return e.Result, nil
}

// DPValue is a polymorphic data-point value: bool, number, or string
// depending on the DP type.
type DPValue struct {
	raw any
}

// UnmarshalJSON captures whichever JSON type the vendor sent.
func (v *DPValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.raw)
}

// MarshalJSON writes the value back in its native JSON type.
func (v DPValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// BoolDP wraps a boolean command value.
func BoolDP(b bool) DPValue { return DPValue{raw: b} }

// IntDP wraps an integer command value.
func IntDP(i int64) DPValue { return DPValue{raw: i} }

// AsBool returns the boolean value, if this DP carries one.
func (v DPValue) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// AsFloat64 returns the numeric value, if this DP carries one.
// JSON numbers decode as float64; int64 covers values built via IntDP.
func (v DPValue) AsFloat64() (float64, bool) {
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsString returns the string value, if this DP carries one.
func (v DPValue) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// DeviceProperty is a single data point from the device status endpoint.
type DeviceProperty struct {
	// Code is the DP code, e.g. "temp_current", "switch_1", "cur_power".
	Code string `json:"code"`

	// Value is the DP value: bool, number, or string.
	Value DPValue `json:"value"`
}

// tokenResult is the payload of a successful token response.
type tokenResult struct {
	// AccessToken is the short-lived bearer token for subsequent calls.
	AccessToken string `json:"access_token"`

	// ExpireTime is the validity period in seconds (typically 7200).
	ExpireTime int64 `json:"expire_time"`

	// RefreshToken renews the access token without re-authenticating.
	RefreshToken string `json:"refresh_token"`

	// UID is the vendor user ID associated with this token.
	UID string `json:"uid"`
}

// command is a single DP write sent to the commands endpoint.
type command struct {
	Code  string  `json:"code"`
	Value DPValue `json:"value"`
}

// commandRequest is the body of POST /v1.0/devices/{id}/commands.
type commandRequest struct {
	Commands []command `json:"commands"`
}
