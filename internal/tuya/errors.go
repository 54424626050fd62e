package tuya

import (
	"errors"
	"fmt"
)

// Sentinel errors for vendor gateway operations.
// Check with errors.Is() in calling code.
var (
	// ErrRequestFailed indicates a transport-level failure (connection,
	// timeout, non-2xx status). Transient; the next scheduled cycle retries.
	ErrRequestFailed = errors.New("tuya: request failed")

	// ErrTokenRefresh indicates the access token could not be obtained.
	ErrTokenRefresh = errors.New("tuya: token refresh failed")

	// ErrUnknownDevice is returned when a device identifier has no
	// configured device type.
	ErrUnknownDevice = errors.New("tuya: unknown device")

	// ErrUnknownDeviceType is returned for a device type string outside
	// the supported set.
	ErrUnknownDeviceType = errors.New("tuya: unknown device type")

	// ErrUnsupportedCommand is returned when a sensor kind has no
	// writable DP code for the target device type.
	ErrUnsupportedCommand = errors.New("tuya: unsupported command")
)

// APIError is an application-level failure reported inside a vendor
// response envelope (success=false).
type APIError struct {
	// Code is the vendor error code.
	Code int

	// Msg is the vendor-supplied message.
	Msg string

	// TID is the server-side trace ID, useful for vendor support queries.
	TID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tuya: API error code=%d msg=%q tid=%s", e.Code, e.Msg, e.TID)
}
