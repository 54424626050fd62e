// Package telemetry provides the sensor data model for Homewatch Core.
//
// It defines the closed set of sensor kinds, the fixed-point value codec
// used to persist real-world readings as integers, the in-memory latest
// reading cache shared between the ingestion and control loops, and the
// durable reading repository backed by SQLite.
//
// # Key Types
//
//   - SensorKind: closed enumeration of measurement/actuation channels
//   - Value: decoded real-world value (fixed-point number or boolean)
//   - SensorReading: immutable persisted fact (device, kind, timestamp, encoded value)
//   - ReadingCache: concurrent latest-reading view keyed by (device, kind)
//   - ReadingRepository: append-only durable store of readings
//
// # Value Encoding
//
// Readings are persisted as 64-bit signed integers:
//
//   - numeric kinds: encoded = round(value * 100), half away from zero
//     e.g. 21.45 °C -> 2145, 60.5 % -> 6050, -5.5 -> -550
//   - boolean kinds: false -> 0, true -> 1
//
// Decoding is total; every int64 maps back to a Value.
//
// # Thread Safety
//
// The ReadingCache is safe for concurrent use with a single writer (the
// ingestion loop) and any number of readers. Codec functions are pure.
package telemetry
