package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type state struct {
	UsersByID            map[string]User    `json:"usersById"`
	UserIDByUsername     map[string]string  `json:"userIdByUsername"`
	SessionsByID         map[string]Session `json:"sessionsById"`
	SessionIDByTokenHash map[string]string  `json:"sessionIdByTokenHash"`
}

func newState() state {
	return state{
		UsersByID:            map[string]User{},
		UserIDByUsername:     map[string]string{},
		SessionsByID:         map[string]Session{},
		SessionIDByTokenHash: map[string]string{},
	}
}

type FileRepo struct {
	mu   sync.RWMutex
	path string
	s    state
}

var _ Repo = (*FileRepo)(nil)

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "auth.json"),
		s:    newState(),
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
			r.s = newState()
			return nil
		}
		return err
	}
	var loaded state
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.UsersByID == nil {
		loaded.UsersByID = map[string]User{}
	}
	if loaded.UserIDByUsername == nil {
		loaded.UserIDByUsername = map[string]string{}
	}
	if loaded.SessionsByID == nil {
		loaded.SessionsByID = map[string]Session{}
	}
	if loaded.SessionIDByTokenHash == nil {
		loaded.SessionIDByTokenHash = map[string]string{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o600)
}

func (r *FileRepo) CreateUser(u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.UserIDByUsername[u.Username]; ok {
		return ErrUsernameTaken
	}
	r.s.UsersByID[u.ID] = u
	r.s.UserIDByUsername[u.Username] = u.ID
	return r.saveLocked()
}

func (r *FileRepo) GetUserByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.s.UsersByID[id]
	return u, ok
}

func (r *FileRepo) GetUserByUsername(username string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.s.UserIDByUsername[username]
	if !ok {
		return User{}, false
	}
	u, ok := r.s.UsersByID[id]
	return u, ok
}

func (r *FileRepo) UpdateUser(u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.UsersByID[u.ID]; !ok {
		return ErrUserNotFound
	}
	r.s.UsersByID[u.ID] = u
	return r.saveLocked()
}

func (r *FileRepo) ListUsers() ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.s.UsersByID))
	for _, u := range r.s.UsersByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *FileRepo) CreateSession(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.SessionsByID[s.ID] = s
	r.s.SessionIDByTokenHash[s.TokenHash] = s.ID
	return r.saveLocked()
}

func (r *FileRepo) GetSessionByTokenHash(tokenHash string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.s.SessionIDByTokenHash[tokenHash]
	if !ok {
		return Session{}, false
	}
	s, ok := r.s.SessionsByID[id]
	return s, ok
}

func (r *FileRepo) DeleteSessionByID(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.s.SessionsByID[sessionID]
	if !ok {
		return nil
	}
	delete(r.s.SessionsByID, sessionID)
	delete(r.s.SessionIDByTokenHash, s.TokenHash)
	return r.saveLocked()
}

func (r *FileRepo) DeleteSessionByTokenHash(tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.s.SessionIDByTokenHash[tokenHash]
	if !ok {
		return nil
	}
	delete(r.s.SessionIDByTokenHash, tokenHash)
	delete(r.s.SessionsByID, id)
	return r.saveLocked()
}

func (r *FileRepo) TouchSession(sessionID string, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.s.SessionsByID[sessionID]
	if !ok {
		return nil
	}
	s.LastSeen = lastSeen
	r.s.SessionsByID[sessionID] = s
	return r.saveLocked()
}
