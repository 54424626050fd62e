package mqtt

import "fmt"

// Topic prefixes for the Homewatch MQTT hierarchy.
const (
	// TopicPrefix is the base for all Homewatch topics.
	TopicPrefix = "homewatch"

	// TopicPrefixTelemetry is the base for per-device telemetry topics.
	TopicPrefixTelemetry = "homewatch/telemetry"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "homewatch/system"
)

// Topics provides builders for Homewatch MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Telemetry("bf1234", "temperature")
//	// Returns: "homewatch/telemetry/bf1234/temperature"
type Topics struct{}

// Telemetry returns the topic for one device's latest reading of a kind.
//
// Messages on this topic are published retained, so a new subscriber
// immediately sees the most recent reading.
//
// Example: homewatch/telemetry/bf1234/temperature
func (Topics) Telemetry(deviceID, kind string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixTelemetry, deviceID, kind)
}

// DeviceTelemetry returns the wildcard subscription for all of one
// device's readings.
//
// Example: homewatch/telemetry/bf1234/+
func (Topics) DeviceTelemetry(deviceID string) string {
	return fmt.Sprintf("%s/%s/+", TopicPrefixTelemetry, deviceID)
}

// AllTelemetry returns the wildcard subscription for every reading.
//
// Example: homewatch/telemetry/#
func (Topics) AllTelemetry() string {
	return TopicPrefixTelemetry + "/#"
}

// SystemStatus returns the topic for service online/offline status.
//
// Example: homewatch/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
