// Package ingest polls device telemetry and fans it out.
//
// Each cycle fetches current readings for every configured device,
// persists them, and refreshes the in-memory latest-reading cache.
// Optional sinks (MQTT, InfluxDB) receive each accepted reading on a
// best-effort basis.
//
// Failure Isolation:
//   - One device failing to poll never blocks the others
//   - A duplicate reading is benign: the row is kept, the cache still
//     advances
//   - Sink errors are logged and never fail a cycle
package ingest
