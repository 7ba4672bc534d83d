package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/auth"
)

// AuthRepo stores accounts and sessions in the users and sessions tables.
type AuthRepo struct {
	db *sql.DB
}

var _ auth.Repo = (*AuthRepo)(nil)

func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

const userColumns = `id, username, password_hash, admin, status, created_at, approved_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (auth.User, error) {
	var (
		u          auth.User
		admin      int
		status     string
		createdAt  string
		approvedAt sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &admin, &status, &createdAt, &approvedAt); err != nil {
		return auth.User{}, err
	}
	u.Admin = admin != 0
	u.Status = auth.Status(status)
	t, err := parseTime(createdAt)
	if err != nil {
		return auth.User{}, fmt.Errorf("user %s created_at: %w", u.ID, err)
	}
	u.CreatedAt = t
	if approvedAt.Valid {
		t, err := parseTime(approvedAt.String)
		if err != nil {
			return auth.User{}, fmt.Errorf("user %s approved_at: %w", u.ID, err)
		}
		u.ApprovedAt = &t
	}
	return u, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *AuthRepo) CreateUser(u auth.User) error {
	ctx := context.Background()
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, u.Username).Scan(&exists)
		if err == nil {
			return auth.ErrUsernameTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user lookup: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.PasswordHash, boolInt(u.Admin), string(u.Status), formatTime(u.CreatedAt), nullTime(u.ApprovedAt))
		if err != nil {
			return fmt.Errorf("user insert: %w", err)
		}
		return nil
	})
}

func (r *AuthRepo) getUser(where string, arg any) (auth.User, bool) {
	row := r.db.QueryRowContext(context.Background(), `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg)
	u, err := scanUser(row)
	if err != nil {
		return auth.User{}, false
	}
	return u, true
}

func (r *AuthRepo) GetUserByID(id string) (auth.User, bool) {
	return r.getUser("id", id)
}

func (r *AuthRepo) GetUserByUsername(username string) (auth.User, bool) {
	return r.getUser("username", username)
}

func (r *AuthRepo) UpdateUser(u auth.User) error {
	res, err := r.db.ExecContext(context.Background(), `
		UPDATE users SET username = ?, password_hash = ?, admin = ?, status = ?, approved_at = ?
		WHERE id = ?
	`, u.Username, u.PasswordHash, boolInt(u.Admin), string(u.Status), nullTime(u.ApprovedAt), u.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *AuthRepo) ListUsers() ([]auth.User, error) {
	rows, err := r.db.QueryContext(context.Background(), `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	out := []auth.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *AuthRepo) CreateSession(s auth.Session) error {
	_, err := r.db.ExecContext(context.Background(), `
		INSERT INTO sessions (id, user_id, token_hash, created_at, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.TokenHash, formatTime(s.CreatedAt), formatTime(s.LastSeen), formatTime(s.ExpiresAt))
	if err != nil {
		return fmt.Errorf("session insert: %w", err)
	}
	return nil
}

func (r *AuthRepo) GetSessionByTokenHash(tokenHash string) (auth.Session, bool) {
	var s auth.Session
	var createdAt, lastSeen, expiresAt string
	err := r.db.QueryRowContext(context.Background(), `
		SELECT id, user_id, token_hash, created_at, last_seen, expires_at FROM sessions WHERE token_hash = ?
	`, tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &createdAt, &lastSeen, &expiresAt)
	if err != nil {
		return auth.Session{}, false
	}
	var perr error
	if s.CreatedAt, perr = parseTime(createdAt); perr != nil {
		return auth.Session{}, false
	}
	if s.LastSeen, perr = parseTime(lastSeen); perr != nil {
		return auth.Session{}, false
	}
	if s.ExpiresAt, perr = parseTime(expiresAt); perr != nil {
		return auth.Session{}, false
	}
	return s, true
}

func (r *AuthRepo) DeleteSessionByID(sessionID string) error {
	if _, err := r.db.ExecContext(context.Background(), `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (r *AuthRepo) DeleteSessionByTokenHash(tokenHash string) error {
	if _, err := r.db.ExecContext(context.Background(), `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (r *AuthRepo) TouchSession(sessionID string, lastSeen time.Time) error {
	if _, err := r.db.ExecContext(context.Background(), `UPDATE sessions SET last_seen = ? WHERE id = ?`, formatTime(lastSeen), sessionID); err != nil {
		return fmt.Errorf("session touch: %w", err)
	}
	return nil
}
