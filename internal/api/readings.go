package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// maxQueryParamLen bounds identifiers taken from the URL.
const maxQueryParamLen = 128

// latestEntry is one cache entry in the latest-readings response.
type latestEntry struct {
	Value      any       `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}

// readingEntry is one persisted reading in a range response.
type readingEntry struct {
	Kind       string    `json:"sensor_kind"`
	Value      any       `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// handleLatestReadings returns the newest reading per (device, kind) pair
// from the in-memory cache.
func (s *Server) handleLatestReadings(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.cache.Snapshot()

	devices := make(map[string]map[string]latestEntry)
	for key, entry := range snapshot {
		kinds, ok := devices[key.DeviceID]
		if !ok {
			kinds = make(map[string]latestEntry)
			devices[key.DeviceID] = kinds
		}
		kinds[key.Kind.String()] = latestEntry{
			Value:      valueJSON(entry.Value),
			ObservedAt: entry.ObservedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(snapshot),
	})
}

// handleDeviceReadings returns persisted readings for one device,
// newest first. Range queries read the store directly and bypass the cache.
func (s *Server) handleDeviceReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	if deviceID == "" || len(deviceID) > maxQueryParamLen {
		writeBadRequest(w, "invalid device ID")
		return
	}

	query := telemetry.RangeQuery{DeviceID: deviceID}

	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind, err := telemetry.ParseSensorKind(raw)
		if err != nil {
			writeBadRequest(w, "unknown sensor kind")
			return
		}
		query.Kind = kind
	}

	var err error
	if query.From, err = parseTimeParam(r.URL.Query().Get("from")); err != nil {
		writeBadRequest(w, "invalid from timestamp")
		return
	}
	if query.To, err = parseTimeParam(r.URL.Query().Get("to")); err != nil {
		writeBadRequest(w, "invalid to timestamp")
		return
	}
	if query.Limit, err = parseLimitParam(r.URL.Query().Get("limit")); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	readings, err := s.repo.ReadingsRange(r.Context(), query)
	if err != nil {
		s.logger.Error("readings range query failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to load readings")
		return
	}

	entries := make([]readingEntry, 0, len(readings))
	for _, reading := range readings {
		entries = append(entries, readingEntry{
			Kind:       reading.Kind.String(),
			Value:      valueJSON(telemetry.Decode(reading.Kind, reading.Value)),
			RecordedAt: reading.RecordedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"readings":  entries,
		"count":     len(entries),
	})
}

// valueJSON renders a decoded value as a bare JSON number or boolean.
func valueJSON(v telemetry.Value) any {
	if v.IsBool {
		return v.Bool
	}
	return v.Number
}

// parseTimeParam parses an optional RFC 3339 timestamp query parameter.
func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseLimitParam parses an optional positive limit query parameter.
// The repository applies the default and maximum.
func parseLimitParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errInvalidLimit
	}
	return limit, nil
}
