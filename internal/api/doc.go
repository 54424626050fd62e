// Package api implements the read-only HTTP query surface for Homewatch Core.
//
// This package provides:
//   - GET /api/v1/health for liveness and version checks
//   - GET /api/v1/readings/latest serving the in-memory cache snapshot
//   - GET /api/v1/devices/{id}/readings serving historical range queries
//   - Middleware stack (request ID, logging, recovery, optional bearer auth)
//
// # Architecture
//
// The server sits beside the ingest and control loops and never writes:
// latest readings come straight from the reading cache, historical queries
// bypass the cache and hit the SQLite store. No endpoint ever surfaces an
// ingestion error; clients only ever see the current cache and store state.
//
// # Security
//
// Authentication is a single optional static bearer token. When the token is
// empty in configuration every endpoint is open, which suits LAN-only
// deployments.
package api
