package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/telemetry"
)

// EventRepo appends telemetry events to the events table.
type EventRepo struct {
	db *sql.DB
}

var _ telemetry.Repository = (*EventRepo)(nil)

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) RecordEvent(eventType telemetry.EventType, username string, at time.Time, metadata telemetry.EventMetadata) error {
	md, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(context.Background(),
		`INSERT INTO events (type, username, ts, metadata) VALUES (?, ?, ?, ?)`,
		string(eventType), username, unixNano(at), string(md))
	if err != nil {
		return fmt.Errorf("event insert: %w", err)
	}
	return nil
}

func (r *EventRepo) GetEvents(since time.Time, eventTypes []telemetry.EventType) ([]telemetry.Event, error) {
	q := `SELECT id, type, username, ts, metadata FROM events WHERE ts >= ?`
	args := []any{unixNano(since)}
	if len(eventTypes) > 0 {
		q += ` AND type IN (?` + strings.Repeat(", ?", len(eventTypes)-1) + `)`
		for _, t := range eventTypes {
			args = append(args, string(t))
		}
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(context.Background(), q, args...)
	if err != nil {
		return nil, fmt.Errorf("event query: %w", err)
	}
	defer rows.Close()

	out := []telemetry.Event{}
	for rows.Next() {
		var (
			e  telemetry.Event
			t  string
			ts int64
		)
		if err := rows.Scan(&e.ID, &t, &e.Username, &ts, &e.Metadata); err != nil {
			return nil, err
		}
		e.Type = telemetry.EventType(t)
		e.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// unixNano maps times outside the int64 nanosecond range, such as the zero time, to the bounds.
func unixNano(t time.Time) int64 {
	switch {
	case t.Before(minEventTime):
		return math.MinInt64
	case t.After(maxEventTime):
		return math.MaxInt64
	}
	return t.UnixNano()
}

var (
	minEventTime = time.Unix(0, math.MinInt64)
	maxEventTime = time.Unix(0, math.MaxInt64)
)

func (r *EventRepo) Clear() error {
	if _, err := r.db.ExecContext(context.Background(), `DELETE FROM events`); err != nil {
		return fmt.Errorf("event clear: %w", err)
	}
	return nil
}
