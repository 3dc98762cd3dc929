package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"thermo_relay/internal/models"
)

// sqliteTimestamp is the layout SQLite compares TIMESTAMP text columns with.
const sqliteTimestamp = "2006-01-02 15:04:05"

const (
	insertEventSQL = `INSERT INTO controller_events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`
	eventColumns   = `id, occurred_at, type, message, meta`
)

// EventSQLite stores controller events in the controller_events table.
// Events sharing a timestamp keep their insertion order through rowid.
type EventSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventSQLite(db *sql.DB) *EventSQLite {
	return &EventSQLite{db: db, now: time.Now}
}

// EventType canonicalizes an event type for storage and lookups.
func EventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Append stores e. A missing EventID or OccurredAt is filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.ControllerEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = r.now()
	}
	meta, err := encodeMeta(e.Metadata)
	if err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}

	_, err = r.db.ExecContext(ctx, insertEventSQL,
		e.EventID, at.UTC().Format(sqliteTimestamp), EventType(e.Type), e.Description, meta)
	if err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}
	return nil
}

// listEventsSQL renders q as a SELECT with its bind arguments. A limited
// query picks the newest rows first and re-sorts them oldest first.
func listEventsSQL(q EventQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !q.From.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, q.From.UTC().Format(sqliteTimestamp))
	}
	if !q.To.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, q.To.UTC().Format(sqliteTimestamp))
	}
	if typ := EventType(q.Type); typ != "" {
		where = append(where, "type = ?")
		args = append(args, typ)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	if q.Limit <= 0 {
		return "SELECT " + eventColumns + " FROM controller_events" + cond + " ORDER BY occurred_at, rowid", args
	}
	args = append(args, q.Limit)
	return "SELECT " + eventColumns + " FROM (SELECT " + eventColumns + ", rowid AS seq FROM controller_events" + cond +
		" ORDER BY occurred_at DESC, seq DESC LIMIT ?) ORDER BY occurred_at, seq", args
}

// List returns the events matching q, oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.ControllerEvent, error) {
	query, args := listEventsSQL(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []models.ControllerEvent
	for rows.Next() {
		var (
			ev   models.ControllerEvent
			meta sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Metadata = decodeMeta(meta)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func encodeMeta(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodeMeta returns stored metadata as JSON values. Text that is not
// valid JSON is returned as-is.
func decodeMeta(s sql.NullString) any {
	if !s.Valid || s.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return s.String
	}
	return v
}
