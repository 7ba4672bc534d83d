package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/world"
)

// BossRepo keeps boss records in the bosses table. An id equal to the seed's
// reads as the seed until the first write.
type BossRepo struct {
	db   *sql.DB
	seed progress.BossState
}

var _ world.BossRepo = (*BossRepo)(nil)

func NewBossRepo(db *sql.DB, seed progress.BossState) *BossRepo {
	return &BossRepo{db: db, seed: seed}
}

func (r *BossRepo) get(ctx context.Context, q queryer, id string) (progress.BossState, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT state FROM bosses WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		if id != r.seed.ID {
			return progress.BossState{}, fmt.Errorf("boss %q: %w", id, progress.ErrNotFound)
		}
		return r.seed, nil
	}
	if err != nil {
		return progress.BossState{}, fmt.Errorf("boss get: %w", err)
	}
	var b progress.BossState
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return progress.BossState{}, fmt.Errorf("decode boss %q: %w", id, err)
	}
	return b, nil
}

func putBoss(ctx context.Context, tx *sql.Tx, b progress.BossState) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bosses (id, state) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state
	`, b.ID, string(raw))
	if err != nil {
		return fmt.Errorf("boss put: %w", err)
	}
	return nil
}

func (r *BossRepo) Get(ctx context.Context, id string) (progress.BossState, error) {
	return r.get(ctx, conn(ctx, r.db), id)
}

// Update runs fn inside a transaction; the single connection serializes callers.
// fn receives a context carrying the transaction, so player writes made through
// it commit together with the boss.
func (r *BossRepo) Update(ctx context.Context, id string, fn world.UpdateFunc) (progress.BossState, error) {
	var cur, next progress.BossState
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		cur, err = r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err = fn(contextWithTx(ctx, tx), cur)
		if err != nil {
			return err
		}
		next.ID = id
		return putBoss(ctx, tx, next)
	})
	if err != nil {
		return cur, err
	}
	return next, nil
}

func (r *BossRepo) Put(ctx context.Context, b progress.BossState) error {
	if b.ID == "" {
		return fmt.Errorf("boss id is required: %w", progress.ErrInvalidInput)
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return putBoss(ctx, tx, b)
	})
}
