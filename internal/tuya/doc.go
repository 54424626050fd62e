// Package tuya implements the vendor gateway for Homewatch Core.
//
// It wraps the Tuya Cloud HTTP API behind two capabilities the core loops
// consume: fetching decoded sensor observations for a device, and sending
// actuator commands back to it. Everything vendor-specific stays inside
// this package: token caching and refresh, HMAC-SHA256 request signing,
// the response envelope, and the mapping from data-point (DP) codes to
// sensor kinds.
//
// # Usage
//
//	client := tuya.New(cfg.Vendor, devices)
//	obs, err := client.FetchReadings(ctx, "bf99bff9...")
//	err = client.SendCommand(ctx, "bf99bff9...", telemetry.KindRelayState, telemetry.BoolValue(true))
//
// # Thread Safety
//
// All methods are safe for concurrent use; the cached access token is
// guarded by a mutex and refreshed 60 seconds before expiry.
package tuya
