package auth

import "time"

// Repo persists accounts and sessions. CreateUser returns ErrUsernameTaken for duplicates
// and UpdateUser returns ErrUserNotFound for unknown ids.
type Repo interface {
	CreateUser(u User) error
	GetUserByID(id string) (User, bool)
	GetUserByUsername(username string) (User, bool)
	UpdateUser(u User) error
	ListUsers() ([]User, error)

	CreateSession(s Session) error
	GetSessionByTokenHash(tokenHash string) (Session, bool)
	DeleteSessionByID(sessionID string) error
	DeleteSessionByTokenHash(tokenHash string) error
	TouchSession(sessionID string, lastSeen time.Time) error
}
