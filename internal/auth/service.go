package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUsername    = errors.New("username must be 3-32 characters of a-z, 0-9, '.', '_' or '-'")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountPending     = errors.New("account is waiting for admin approval")
	ErrUserNotFound       = errors.New("user not found")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

const minPasswordRunes = 8

type Options struct {
	CookieName string
	// CookieSecure forces the Secure flag. Otherwise it follows TLS / X-Forwarded-Proto.
	CookieSecure   bool
	CookieSameSite string
	SessionTTL     time.Duration
	BcryptCost     int
}

type Service struct {
	repo   Repo
	logger *zap.Logger

	cookieName   string
	cookieSecure bool
	sameSite     http.SameSite
	sessionTTL   time.Duration
	bcryptCost   int
}

func NewService(repo Repo, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:         repo,
		logger:       logger,
		cookieName:   "levelup_session",
		cookieSecure: opts.CookieSecure,
		sameSite:     parseSameSite(opts.CookieSameSite),
		sessionTTL:   30 * 24 * time.Hour,
		bcryptCost:   bcrypt.DefaultCost,
	}
	if opts.CookieName != "" {
		s.cookieName = opts.CookieName
	}
	if opts.SessionTTL > 0 {
		s.sessionTTL = opts.SessionTTL
	}
	if opts.BcryptCost > 0 {
		s.bcryptCost = opts.BcryptCost
	}
	return s
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return ErrWeakPassword
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Register creates a pending account. An admin must approve it before login works.
func (s *Service) Register(username, password string, now time.Time) (User, error) {
	username = NormalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           newID("usr"),
		Username:     username,
		PasswordHash: string(hash),
		Status:       StatusPending,
		CreatedAt:    now,
	}
	if err := s.repo.CreateUser(u); err != nil {
		return User{}, err
	}
	s.logger.Info("account_registered", zap.String("username", username))
	return u, nil
}

// EnsureAdmin creates or promotes the bootstrap admin. The account is always left active.
func (s *Service) EnsureAdmin(username, password string, now time.Time) (User, bool, error) {
	username = NormalizeUsername(username)
	if u, ok := s.repo.GetUserByUsername(username); ok {
		if u.Admin && u.Status == StatusActive {
			return u, false, nil
		}
		u.Admin = true
		u.Status = StatusActive
		if u.ApprovedAt == nil {
			u.ApprovedAt = &now
		}
		if err := s.repo.UpdateUser(u); err != nil {
			return User{}, false, err
		}
		return u, false, nil
	}

	u, err := s.Register(username, password, now)
	if err != nil {
		return User{}, false, err
	}
	u.Admin = true
	u.Status = StatusActive
	u.ApprovedAt = &now
	if err := s.repo.UpdateUser(u); err != nil {
		return User{}, false, err
	}
	s.logger.Info("admin_bootstrapped", zap.String("username", username))
	return u, true, nil
}

// Login checks the password and opens a session. Pending accounts are refused
// only after the password matched, so the status never leaks to strangers.
func (s *Service) Login(username, password string, now time.Time) (User, string, time.Time, error) {
	username = NormalizeUsername(username)
	u, ok := s.repo.GetUserByUsername(username)
	if !ok {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if u.Status != StatusActive {
		return User{}, "", time.Time{}, ErrAccountPending
	}

	token, err := generateToken()
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	exp := now.Add(s.sessionTTL)
	sess := Session{
		ID:        newID("sess"),
		UserID:    u.ID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: exp,
	}
	if err := s.repo.CreateSession(sess); err != nil {
		return User{}, "", time.Time{}, err
	}
	return u, token, exp, nil
}

func (s *Service) Approve(username string, now time.Time) (User, error) {
	u, ok := s.repo.GetUserByUsername(NormalizeUsername(username))
	if !ok {
		return User{}, ErrUserNotFound
	}
	if u.Status == StatusActive {
		return u, nil
	}
	u.Status = StatusActive
	u.ApprovedAt = &now
	if err := s.repo.UpdateUser(u); err != nil {
		return User{}, err
	}
	s.logger.Info("account_approved", zap.String("username", u.Username))
	return u, nil
}

func (s *Service) Lookup(username string) (User, bool) {
	return s.repo.GetUserByUsername(NormalizeUsername(username))
}

func (s *Service) ListUsers() ([]User, error) {
	return s.repo.ListUsers()
}

func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (User, Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return User{}, Session{}, false
	}

	sess, ok := s.repo.GetSessionByTokenHash(hashToken(cookie.Value))
	if !ok {
		return User{}, Session{}, false
	}

	if now.After(sess.ExpiresAt) {
		_ = s.repo.DeleteSessionByID(sess.ID)
		return User{}, Session{}, false
	}

	u, ok := s.repo.GetUserByID(sess.UserID)
	if !ok || u.Status != StatusActive {
		_ = s.repo.DeleteSessionByID(sess.ID)
		return User{}, Session{}, false
	}

	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		_ = s.repo.TouchSession(sess.ID, now)
		sess.LastSeen = now
	}

	return u, sess, true
}

func (s *Service) RevokeSessionForRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	_ = s.repo.DeleteSessionByTokenHash(hashToken(cookie.Value))
}

func (s *Service) shouldUseSecureCookie(r *http.Request) bool {
	if s.cookieSecure || s.sameSite == http.SameSiteNoneMode {
		return true
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func newSessionCookie(name, token string) *http.Cookie {
	return &http.Cookie{Name: name, Value: token, Path: "/"}
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	c := newSessionCookie(s.cookieName, token)
	c.Expires = expiresAt
	c.HttpOnly = true
	c.Secure = s.shouldUseSecureCookie(r)
	c.SameSite = s.sameSite
	http.SetCookie(w, c)
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	c := newSessionCookie(s.cookieName, "")
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	c.HttpOnly = true
	c.Secure = s.shouldUseSecureCookie(r)
	c.SameSite = s.sameSite
	http.SetCookie(w, c)
}

func writeUnauthorized(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}

func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			writeUnauthorized(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := withSessionContext(withUserContext(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run inside RequireAPI.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || !u.Admin {
			writeUnauthorized(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
