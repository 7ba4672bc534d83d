package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xmuzan/samplepomodoro/internal/progress"
)

type fileState struct {
	Users map[string]progress.UserState `json:"users"`
}

// FileRepo keeps every record in a single state.json, rewritten on each change.
type FileRepo struct {
	mu    sync.RWMutex
	path  string
	rules progress.Rules
	s     fileState
}

var _ Repo = (*FileRepo)(nil)

func NewFileRepo(dataDir string, rules progress.Rules) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path:  filepath.Join(dataDir, "state.json"),
		rules: rules.WithDefaults(),
		s:     fileState{Users: map[string]progress.UserState{}},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.s = fileState{Users: map[string]progress.UserState{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return fmt.Errorf("decode %s: %w", r.path, err)
	}
	if loaded.Users == nil {
		loaded.Users = map[string]progress.UserState{}
	}
	for name, us := range loaded.Users {
		loaded.Users[name] = progress.Normalize(us, r.rules)
	}
	r.s = loaded
	return nil
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

// putLocked stores us under k and writes the file. A failed write restores the
// previous entry so memory never runs ahead of disk.
func (r *FileRepo) putLocked(k string, us progress.UserState) error {
	prev, had := r.s.Users[k]
	r.s.Users[k] = us
	if err := r.saveLocked(); err != nil {
		if had {
			r.s.Users[k] = prev
		} else {
			delete(r.s.Users, k)
		}
		return err
	}
	return nil
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *FileRepo) Load(ctx context.Context, username string) (progress.UserState, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	us, ok := r.s.Users[key(username)]
	if !ok {
		return progress.UserState{}, fmt.Errorf("user %q: %w", username, progress.ErrNotFound)
	}
	return us.Clone(), nil
}

func (r *FileRepo) Create(ctx context.Context, username string, s progress.UserState) error {
	_ = ctx
	k := key(username)
	if k == "" {
		return fmt.Errorf("username is required: %w", progress.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.Users[k]; ok {
		return fmt.Errorf("user %q already has a record: %w", username, progress.ErrPreconditionFailed)
	}
	return r.putLocked(k, s.Clone())
}

// Save merges only the patched fields into the stored record.
func (r *FileRepo) Save(ctx context.Context, username string, p progress.Patch) error {
	_ = ctx
	if p.Empty() {
		return nil
	}
	k := key(username)

	r.mu.Lock()
	defer r.mu.Unlock()
	us, ok := r.s.Users[k]
	if !ok {
		return fmt.Errorf("user %q: %w", username, progress.ErrNotFound)
	}
	return r.putLocked(k, p.ApplyTo(us))
}

func (r *FileRepo) Put(ctx context.Context, username string, s progress.UserState) error {
	_ = ctx
	k := key(username)
	if k == "" {
		return fmt.Errorf("username is required: %w", progress.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putLocked(k, s.Clone())
}

func (r *FileRepo) List(ctx context.Context) ([]string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.s.Users))
	for name := range r.s.Users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
