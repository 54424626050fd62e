package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading mirrors a single sensor reading to InfluxDB.
//
// The point carries the original observation timestamp, not the time of the
// write, so mirrored history lines up with the SQLite record. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteReading("bf3a9c01", "temperature", 21.5, observedAt)
//	client.WriteReading("bf7e2d44", "power_consumption", 184.3, observedAt)
func (c *Client) WriteReading(deviceID string, kind string, value float64, observedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
		},
		map[string]interface{}{
			"value": value,
		},
		observedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteLoopStats records cumulative cycle and error counters for one
// scheduled loop.
//
// Used for tracking ingest throughput and vendor API failures over time.
func (c *Client) WriteLoopStats(loop string, cycles uint64, errorCount uint64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"loop_stats",
		map[string]string{
			"loop": loop,
		},
		map[string]interface{}{
			"cycles": int64(cycles),     // #nosec G115 -- counters stay far below int64 range
			"errors": int64(errorCount), // #nosec G115
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
