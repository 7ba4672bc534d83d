package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthServiceForTests(t *testing.T) *Service {
	t.Helper()
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	return NewService(repo, zap.NewNop(), Options{BcryptCost: bcrypt.MinCost})
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newAuthServiceForTests(t)
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	_, err := svc.Register("ab", "longenough", now)
	require.ErrorIs(t, err, ErrInvalidUsername)
	_, err = svc.Register("has space", "longenough", now)
	require.ErrorIs(t, err, ErrInvalidUsername)
	_, err = svc.Register("ayse", "short", now)
	require.ErrorIs(t, err, ErrWeakPassword)

	u, err := svc.Register("  Ayse ", "longenough", now)
	require.NoError(t, err)
	assert.Equal(t, "ayse", u.Username)
	assert.Equal(t, StatusPending, u.Status)
	assert.NotEqual(t, "longenough", u.PasswordHash)

	_, err = svc.Register("AYSE", "longenough", now)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_LoginRequiresApproval(t *testing.T) {
	svc := newAuthServiceForTests(t)
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	_, err := svc.Register("mert", "password1", now)
	require.NoError(t, err)

	_, _, _, err = svc.Login("mert", "wrong-pass", now)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, _, err = svc.Login("mert", "password1", now)
	require.ErrorIs(t, err, ErrAccountPending)
	_, _, _, err = svc.Login("nobody", "password1", now)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	approved, err := svc.Approve("MERT", now)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	u, token, exp, err := svc.Login("mert", "password1", now)
	require.NoError(t, err)
	assert.Equal(t, "mert", u.Username)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(now))

	_, err = svc.Approve("ghost", now)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_AuthenticateRequest_ExpiredSessionIsRejected(t *testing.T) {
	svc := newAuthServiceForTests(t)
	now := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)

	_, created, err := svc.EnsureAdmin("root", "adminpass", now)
	require.NoError(t, err)
	assert.True(t, created)
	_, token, exp, err := svc.Login("root", "adminpass", now)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.AddCookie(newSessionCookie(svc.cookieName, token))

	u, _, ok := svc.AuthenticateRequest(req, now.Add(time.Minute))
	require.True(t, ok)
	assert.True(t, u.Admin)

	_, _, ok = svc.AuthenticateRequest(req, exp.Add(time.Second))
	assert.False(t, ok)
	_, ok = svc.repo.GetSessionByTokenHash(hashToken(token))
	assert.False(t, ok, "expired session should be removed from repo")
}

func TestService_EnsureAdminPromotesExisting(t *testing.T) {
	svc := newAuthServiceForTests(t)
	now := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)
	_, err := svc.Register("boss", "password1", now)
	require.NoError(t, err)

	u, created, err := svc.EnsureAdmin("boss", "ignored-pass", now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, u.Admin)
	assert.Equal(t, StatusActive, u.Status)
}

func TestService_NewService_Options(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	svc := NewService(repo, nil, Options{CookieName: "lu", CookieSameSite: "strict", SessionTTL: time.Hour})

	assert.Equal(t, "lu", svc.cookieName)
	assert.Equal(t, http.SameSiteStrictMode, svc.sameSite)
	assert.Equal(t, time.Hour, svc.sessionTTL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	svc.SetSessionCookie(rec, req, "tok", time.Now().Add(time.Hour))
	cookie := rec.Result().Cookies()[0]
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
}

func TestHandler_RegisterLoginFlow(t *testing.T) {
	svc := newAuthServiceForTests(t)
	h := NewHandler(svc)
	var hooked []string
	h.SetRegisterHook(func(_ context.Context, u User) error {
		hooked = append(hooked, u.Username)
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("GET /api/admin/users", svc.RequireAPI(svc.RequireAdmin(http.HandlerFunc(h.AdminUsers))))
	mux.Handle("POST /api/admin/users/{username}/approve", svc.RequireAPI(svc.RequireAdmin(http.HandlerFunc(h.AdminApprove))))

	do := func(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := do("POST", "/api/auth/register", `{"username":"zeynep","password":"password1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.Equal(t, []string{"zeynep"}, hooked)

	rec = do("POST", "/api/auth/login", `{"username":"zeynep","password":"password1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, _, err := svc.EnsureAdmin("root", "adminpass", time.Now())
	require.NoError(t, err)
	rec = do("POST", "/api/auth/login", `{"username":"root","password":"adminpass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	adminCookie := rec.Result().Cookies()[0]

	rec = do("POST", "/api/admin/users/zeynep/approve", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do("POST", "/api/auth/login", `{"username":"zeynep","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	userCookie := rec.Result().Cookies()[0]

	rec = do("GET", "/api/admin/users", "", userCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do("GET", "/api/admin/users", "", adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"zeynep"`)
	rec = do("GET", "/api/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
