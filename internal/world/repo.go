package world

import (
	"context"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

// UpdateFunc computes the next boss record from the current one. Returning an
// error aborts the update and leaves the stored record untouched. Stores that
// support it carry their open transaction in ctx, so writes made through ctx
// commit or roll back together with the boss.
type UpdateFunc func(ctx context.Context, current progress.BossState) (progress.BossState, error)

// BossRepo holds the boss shared by every player. Update is a serialized
// read-modify-write: concurrent callers never observe the same current record.
type BossRepo interface {
	Get(ctx context.Context, id string) (progress.BossState, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (progress.BossState, error)
	Put(ctx context.Context, b progress.BossState) error
}
