package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/okian/trustlens/internal/domain/model"
)

// Driver and pragma defaults. WAL plus a generous busy timeout keeps the
// generator and the pipeline from tripping over each other on one file.
const (
	sqliteDriver       = "sqlite"
	defaultBusyTimeout = 10_000 // milliseconds
	defaultSynchronous = "NORMAL"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY,
	user_id      TEXT    NOT NULL,
	ts_unix_ms   INTEGER NOT NULL,
	day_unix     INTEGER NOT NULL,
	type         TEXT    NOT NULL,
	amount       REAL,
	ingestion_id TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_day ON events(day_unix);

CREATE TABLE IF NOT EXISTS malformed (
	day_unix INTEGER PRIMARY KEY,
	n        INTEGER NOT NULL
);
`

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the store at path and applies the
// production pragmas before any query runs.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	cfg := sqliteConfig{
		busyTimeout: defaultBusyTimeout,
		synchronous: defaultSynchronous,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrOpenStore, pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrOpenStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Days returns the sorted set of days present.
func (s *SQLiteStore) Days(ctx context.Context) ([]time.Time, error) {
	const query = `
		SELECT day_unix FROM events
		UNION
		SELECT day_unix FROM malformed
		ORDER BY day_unix`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var unix int64
		if err := rows.Scan(&unix); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, time.Unix(unix, 0).UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate days: %w", err)
	}
	return days, nil
}

// Bucket returns the (possibly empty) bucket for one day.
func (s *SQLiteStore) Bucket(ctx context.Context, d time.Time) (model.DayBucket, error) {
	key := day(d).Unix()
	bucket := model.DayBucket{Date: day(d)}

	const query = `
		SELECT user_id, ts_unix_ms, type, amount, ingestion_id
		FROM events WHERE day_unix = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return model.DayBucket{}, fmt.Errorf("query bucket: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      model.Event
			tsMS   int64
			typ    string
			amount sql.NullFloat64
		)
		if err := rows.Scan(&e.UserID, &tsMS, &typ, &amount, &e.IngestionID); err != nil {
			return model.DayBucket{}, fmt.Errorf("scan event: %w", err)
		}
		e.TS = time.UnixMilli(tsMS).UTC()
		e.Type = model.EventType(typ)
		if amount.Valid {
			e.Amount = amount.Float64
			e.HasAmount = true
		}
		bucket.Events = append(bucket.Events, e)
	}
	if err := rows.Err(); err != nil {
		return model.DayBucket{}, fmt.Errorf("iterate bucket: %w", err)
	}

	const malformedQuery = `SELECT n FROM malformed WHERE day_unix = ?`
	if err := s.db.QueryRowContext(ctx, malformedQuery, key).Scan(&bucket.Malformed); err != nil && err != sql.ErrNoRows {
		return model.DayBucket{}, fmt.Errorf("query malformed: %w", err)
	}
	return bucket, nil
}

// Append stores events inside one transaction.
func (s *SQLiteStore) Append(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
		INSERT INTO events (user_id, ts_unix_ms, day_unix, type, amount, ingestion_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		amount := sql.NullFloat64{Float64: e.Amount, Valid: e.HasAmount}
		if _, err := stmt.ExecContext(ctx,
			e.UserID, e.TS.UTC().UnixMilli(), e.Day().Unix(), string(e.Type), amount, e.IngestionID,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// AddMalformed tallies dropped records for a day.
func (s *SQLiteStore) AddMalformed(ctx context.Context, d time.Time, n int) error {
	if n <= 0 {
		return nil
	}
	const upsert = `
		INSERT INTO malformed (day_unix, n) VALUES (?, ?)
		ON CONFLICT(day_unix) DO UPDATE SET n = n + excluded.n`
	if _, err := s.db.ExecContext(ctx, upsert, day(d).Unix(), n); err != nil {
		return fmt.Errorf("record malformed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
