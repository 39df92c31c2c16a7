package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/model"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS order_journal (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        event_id TEXT,
        ts INTEGER,
        event TEXT,
        order_id INTEGER,
        bot_id INTEGER,
        class TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_journal (event_id, ts, event, order_id, bot_id, class) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.EventID, rec.Timestamp.UnixNano(), string(rec.Event), rec.OrderID, rec.BotID, string(rec.Class))
	return err
}

// Query returns records matching q in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT event_id, ts, event, order_id, bot_id, class FROM order_journal WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Event != "" {
		query += ` AND event = ?`
		args = append(args, string(q.Event))
	}
	if q.OrderID != 0 {
		query += ` AND order_id = ?`
		args = append(args, q.OrderID)
	}
	if q.BotID != 0 {
		query += ` AND bot_id = ?`
		args = append(args, q.BotID)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var (
			r         Record
			ts        int64
			ev, class string
		)
		if err := rows.Scan(&r.EventID, &ts, &ev, &r.OrderID, &r.BotID, &class); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		r.Event = events.Type(ev)
		r.Class = model.OrderClass(class)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
