package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded by the frame loop.
const (
	EventSwipe       = "swipe"
	EventChargeStart = "charge_start"
	EventBurst       = "burst"
	EventToggle      = "toggle"
)

// Event is one journal entry.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository appends to and reads the event journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends an event. Missing ID and timestamp are filled in.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Kind, e.Detail, e.CreatedAt,
	)
	return err
}

// List returns up to limit events, newest first. A non-positive limit
// returns all of them.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	return r.ListKind("", limit)
}

// ListKind is List restricted to one kind; an empty kind matches all.
func (r *EventRepository) ListKind(kind string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, kind, detail, created_at FROM events
		 WHERE ? = '' OR kind = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the number of events of kind, or of all kinds when kind
// is empty.
func (r *EventRepository) Count(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	}
	return n, err
}

// Prune deletes events older than cutoff and returns how many were removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
