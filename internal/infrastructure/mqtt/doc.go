// Package mqtt provides MQTT client connectivity for Homewatch Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Homewatch publishes every accepted reading to a retained per-device
// topic, so dashboards and home-automation consumers can follow live
// telemetry without touching the REST API.
//
//	Homewatch Core → MQTT Broker → dashboards, automations
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Telemetry("bf1234", "temperature")
//	client.PublishRetained(topic, []byte(`{"value":21.5}`))
package mqtt
