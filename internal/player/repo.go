package player

import (
	"context"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

// Repo stores one progress record per username.
// Load returns an error matching progress.ErrNotFound for unknown users.
type Repo interface {
	Load(ctx context.Context, username string) (progress.UserState, error)
	Create(ctx context.Context, username string, s progress.UserState) error
	Save(ctx context.Context, username string, p progress.Patch) error
	Put(ctx context.Context, username string, s progress.UserState) error
	List(ctx context.Context) ([]string, error)
}
