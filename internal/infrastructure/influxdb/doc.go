// Package influxdb mirrors homewatch sensor readings into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. SQLite remains the
// durable source of truth; this package feeds an optional time-series copy
// for dashboards and long-range queries.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Sensor readings accepted by the ingest pipeline
//   - Poll and control cycle statistics
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "homewatch",
//	    Bucket: "readings",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteReading("bf3a9c01", "temperature", 21.5, observedAt)
//
// # Write Semantics
//
// Writes are non-blocking. Points are buffered and flushed in batches on the
// configured interval. A slow or unreachable InfluxDB never stalls the ingest
// loop; failed batches surface through the SetOnError callback.
package influxdb
