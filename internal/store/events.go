package store

import (
	"database/sql"
	"errors"
	"time"
)

// Event is one persisted gesture event. Position is optional; not every
// gesture has a screen location.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Type       string    `json:"type"`
	X          *float64  `json:"x,omitempty"`
	Y          *float64  `json:"y,omitempty"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventRepository provides append and query operations for gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert appends one event and fills in its assigned ID.
func (r *EventRepository) Insert(ev *Event) error {
	var x, y any
	if ev.X != nil {
		x = *ev.X
	}
	if ev.Y != nil {
		y = *ev.Y
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, type, x, y, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.SessionID, ev.Type, x, y, ev.Confidence, ev.CreatedAt,
	)
	if err != nil {
		return err
	}

	ev.ID, err = result.LastInsertId()
	return err
}

// Recent retrieves the most recent events across all sessions, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, type, x, y, confidence, created_at
		 FROM gesture_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// BySession retrieves every event of one session in emission order.
func (r *EventRepository) BySession(sessionID string) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, type, x, y, confidence, created_at
		 FROM gesture_events WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountByType returns the number of events per gesture type for one session.
func (r *EventRepository) CountByType(sessionID string) (map[string]int64, error) {
	rows, err := r.db.Query(
		`SELECT type, COUNT(*) FROM gesture_events WHERE session_id = ? GROUP BY type`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		ev := &Event{}
		var x, y sql.NullFloat64

		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Type, &x, &y, &ev.Confidence, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if x.Valid {
			ev.X = &x.Float64
		}
		if y.Valid {
			ev.Y = &y.Float64
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// GetSetting reads one settings value. Returns ErrNotFound for a missing key.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// SetSetting writes one settings value, overwriting any previous one.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
