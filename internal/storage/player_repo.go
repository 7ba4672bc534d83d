package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/player"
	"github.com/xmuzan/samplepomodoro/internal/progress"
)

// PlayerRepo stores each progress record as one JSON document per username.
type PlayerRepo struct {
	db    *sql.DB
	rules progress.Rules
	now   func() time.Time
}

var _ player.Repo = (*PlayerRepo)(nil)

func NewPlayerRepo(db *sql.DB, rules progress.Rules) *PlayerRepo {
	return &PlayerRepo{db: db, rules: rules.WithDefaults(), now: time.Now}
}

func playerKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PlayerRepo) get(ctx context.Context, q queryer, k string) (progress.UserState, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT state FROM players WHERE username = ?`, k).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.UserState{}, fmt.Errorf("user %q: %w", k, progress.ErrNotFound)
	}
	if err != nil {
		return progress.UserState{}, fmt.Errorf("player get: %w", err)
	}
	var us progress.UserState
	if err := json.Unmarshal([]byte(raw), &us); err != nil {
		return progress.UserState{}, fmt.Errorf("decode player %q: %w", k, err)
	}
	return progress.Normalize(us, r.rules), nil
}

func (r *PlayerRepo) upsert(ctx context.Context, tx *sql.Tx, k string, s progress.UserState) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (username, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`, k, string(b), formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("player upsert: %w", err)
	}
	return nil
}

func (r *PlayerRepo) Load(ctx context.Context, username string) (progress.UserState, error) {
	return r.get(ctx, conn(ctx, r.db), playerKey(username))
}

func (r *PlayerRepo) Create(ctx context.Context, username string, s progress.UserState) error {
	k := playerKey(username)
	if k == "" {
		return fmt.Errorf("username is required: %w", progress.ErrInvalidInput)
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := r.get(ctx, tx, k)
		if err == nil {
			return fmt.Errorf("user %q already has a record: %w", username, progress.ErrPreconditionFailed)
		}
		if !errors.Is(err, progress.ErrNotFound) {
			return err
		}
		return r.upsert(ctx, tx, k, s)
	})
}

// Save merges the patched fields into the stored record inside one transaction.
func (r *PlayerRepo) Save(ctx context.Context, username string, p progress.Patch) error {
	if p.Empty() {
		return nil
	}
	k := playerKey(username)
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := r.get(ctx, tx, k)
		if err != nil {
			return err
		}
		return r.upsert(ctx, tx, k, p.ApplyTo(cur))
	})
}

func (r *PlayerRepo) Put(ctx context.Context, username string, s progress.UserState) error {
	k := playerKey(username)
	if k == "" {
		return fmt.Errorf("username is required: %w", progress.ErrInvalidInput)
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.upsert(ctx, tx, k, s)
	})
}

func (r *PlayerRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM players ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("player list: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
