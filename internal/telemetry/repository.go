package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	defaultRangeLimit = 500
	maxRangeLimit     = 5000
)

// recordedAtLayout is the storage format for reading timestamps.
//
// Millisecond precision matches the vendor API's timestamps, and the fixed
// width keeps lexicographic ordering identical to chronological ordering,
// which the MAX(recorded_at) warm-start query depends on.
const recordedAtLayout = "2006-01-02T15:04:05.000Z"

// RangeQuery selects a slice of persisted readings for one device.
type RangeQuery struct {
	// DeviceID is required.
	DeviceID string

	// Kind restricts results to one sensor kind when non-empty.
	Kind SensorKind

	// From and To bound RecordedAt (inclusive from, exclusive to).
	// Zero values leave the corresponding bound open.
	From time.Time
	To   time.Time

	// Limit caps the number of rows (default 500, max 5000).
	Limit int
}

// ReadingRepository stores and retrieves sensor readings.
//
// The store is append-only: readings are never updated or deleted, and a
// duplicate (device, kind, recorded_at) insert is rejected with
// ErrDuplicateReading.
//
// Implementations must be thread-safe and use UTC timestamps.
type ReadingRepository interface {
	// InsertReading persists one reading. Once it returns nil the reading
	// survives process restart. Returns ErrDuplicateReading when the
	// (device, kind, timestamp) triple already exists.
	InsertReading(ctx context.Context, r SensorReading) error

	// ReadingsRange returns readings matching the query, newest first.
	ReadingsRange(ctx context.Context, q RangeQuery) ([]SensorReading, error)

	// LatestReadings returns the newest reading per (device, kind) pair
	// across the whole store. Used to rebuild the in-memory cache on
	// startup.
	LatestReadings(ctx context.Context) ([]SensorReading, error)
}

// SQLiteReadingRepository implements ReadingRepository on the
// sensor_readings table.
type SQLiteReadingRepository struct {
	db *sql.DB
}

// NewSQLiteReadingRepository creates a repository on an open connection.
func NewSQLiteReadingRepository(db *sql.DB) *SQLiteReadingRepository {
	return &SQLiteReadingRepository{db: db}
}

// InsertReading inserts one reading row.
//
// A UNIQUE constraint violation on (device_id, sensor_kind, recorded_at)
// maps to ErrDuplicateReading so callers can treat re-observed facts as
// benign. Every insert commits independently; there is no multi-reading
// transaction.
func (r *SQLiteReadingRepository) InsertReading(ctx context.Context, reading SensorReading) error {
	if reading.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if _, err := ParseSensorKind(string(reading.Kind)); err != nil {
		return err
	}
	if reading.RecordedAt.IsZero() {
		return fmt.Errorf("recorded_at is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sensor_readings (device_id, sensor_kind, recorded_at, value) VALUES (?, ?, ?, ?)",
		reading.DeviceID,
		string(reading.Kind),
		reading.RecordedAt.UTC().Format(recordedAtLayout),
		reading.Value,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s/%s at %s", ErrDuplicateReading,
				reading.DeviceID, reading.Kind, reading.RecordedAt.UTC().Format(recordedAtLayout))
		}
		return fmt.Errorf("inserting reading: %w", err)
	}

	return nil
}

// ReadingsRange returns readings for a device ordered newest first.
func (r *SQLiteReadingRepository) ReadingsRange(ctx context.Context, q RangeQuery) ([]SensorReading, error) {
	if q.DeviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultRangeLimit
	}
	if limit > maxRangeLimit {
		limit = maxRangeLimit
	}

	query := `SELECT id, device_id, sensor_kind, recorded_at, value
	          FROM sensor_readings
	          WHERE device_id = ?`
	args := []any{q.DeviceID}

	if q.Kind != "" {
		query += " AND sensor_kind = ?"
		args = append(args, string(q.Kind))
	}
	if !q.From.IsZero() {
		query += " AND recorded_at >= ?"
		args = append(args, q.From.UTC().Format(recordedAtLayout))
	}
	if !q.To.IsZero() {
		query += " AND recorded_at < ?"
		args = append(args, q.To.UTC().Format(recordedAtLayout))
	}

	query += " ORDER BY recorded_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// LatestReadings returns the newest reading per (device, kind) pair.
func (r *SQLiteReadingRepository) LatestReadings(ctx context.Context) ([]SensorReading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.device_id, r.sensor_kind, r.recorded_at, r.value
		 FROM sensor_readings r
		 JOIN (
		     SELECT device_id, sensor_kind, MAX(recorded_at) AS recorded_at
		     FROM sensor_readings
		     GROUP BY device_id, sensor_kind
		 ) latest
		 ON r.device_id = latest.device_id
		 AND r.sensor_kind = latest.sensor_kind
		 AND r.recorded_at = latest.recorded_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying latest readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// scanReadings converts result rows into SensorReading values.
func scanReadings(rows *sql.Rows) ([]SensorReading, error) {
	var readings []SensorReading
	for rows.Next() {
		var reading SensorReading
		var kind string
		var recordedAt string

		if err := rows.Scan(&reading.ID, &reading.DeviceID, &kind, &recordedAt, &reading.Value); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}

		parsedKind, err := ParseSensorKind(kind)
		if err != nil {
			return nil, err
		}
		reading.Kind = parsedKind

		timestamp, err := parseRecordedAt(recordedAt)
		if err != nil {
			return nil, err
		}
		reading.RecordedAt = timestamp

		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// parseRecordedAt parses a timestamp stored in SQLite.
func parseRecordedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("recorded_at is empty")
	}

	timestamp, err := time.Parse(recordedAtLayout, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse(time.RFC3339, value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing recorded_at: %w", err)
}
