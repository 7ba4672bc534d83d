package world

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

type fileState struct {
	Bosses map[string]progress.BossState `json:"bosses"`
}

// FileRepo stores bosses in world.json. Unknown ids are seeded from seed.
type FileRepo struct {
	mu   sync.Mutex
	path string
	seed progress.BossState
	s    fileState
}

var _ BossRepo = (*FileRepo)(nil)

func NewFileRepo(dataDir string, seed progress.BossState) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "world.json"),
		seed: seed,
		s:    fileState{Bosses: map[string]progress.BossState{}},
	}

	b, err := os.ReadFile(r.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(b, &r.s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.path, err)
		}
		if r.s.Bosses == nil {
			r.s.Bosses = map[string]progress.BossState{}
		}
	}
	return r, nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// putLocked stores b and writes the file. A failed write restores the previous entry.
func (r *FileRepo) putLocked(b progress.BossState) error {
	prev, had := r.s.Bosses[b.ID]
	r.s.Bosses[b.ID] = b
	if err := r.saveLocked(); err != nil {
		if had {
			r.s.Bosses[b.ID] = prev
		} else {
			delete(r.s.Bosses, b.ID)
		}
		return err
	}
	return nil
}

func (r *FileRepo) bossLocked(id string) (progress.BossState, error) {
	if b, ok := r.s.Bosses[id]; ok {
		return b, nil
	}
	if id != r.seed.ID {
		return progress.BossState{}, fmt.Errorf("boss %q: %w", id, progress.ErrNotFound)
	}
	return r.seed, nil
}

func (r *FileRepo) Get(ctx context.Context, id string) (progress.BossState, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bossLocked(id)
}

func (r *FileRepo) Update(ctx context.Context, id string, fn UpdateFunc) (progress.BossState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.bossLocked(id)
	if err != nil {
		return progress.BossState{}, err
	}
	next, err := fn(ctx, cur)
	if err != nil {
		return cur, err
	}
	next.ID = id
	if err := r.putLocked(next); err != nil {
		return cur, err
	}
	return next, nil
}

func (r *FileRepo) Put(ctx context.Context, b progress.BossState) error {
	_ = ctx
	if b.ID == "" {
		return fmt.Errorf("boss id is required: %w", progress.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putLocked(b)
}
