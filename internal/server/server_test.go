package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xmuzan/samplepomodoro/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, base string) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	} else {
		out["body"] = string(raw)
	}
	return res.StatusCode, out
}

func testConfig(t *testing.T, storage string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Server.Storage = storage
	cfg.Admin = config.AdminConfig{Username: "admin", Password: "supersecret"}
	return cfg
}

func newTestServer(t *testing.T, storage string) *httptest.Server {
	t.Helper()
	app, err := New(context.Background(), Options{Config: testConfig(t, storage)})
	require.NoError(t, err)
	srv := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return srv
}

func state(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	v, ok := body["state"].(map[string]any)
	require.True(t, ok, "state missing: %v", body)
	st, ok := v["state"].(map[string]any)
	require.True(t, ok, "record missing: %v", v)
	return st
}

func TestServer_PlayFlow(t *testing.T) {
	for _, storage := range []string{config.StorageFile, config.StorageSQLite} {
		t.Run(storage, func(t *testing.T) {
			srv := newTestServer(t, storage)
			anon := newClient(t, srv.URL)

			code, _ := anon.do(http.MethodGet, "/api/player/state", nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			code, _ = anon.do(http.MethodGet, "/healthz", nil)
			assert.Equal(t, http.StatusOK, code)
			code, body := anon.do(http.MethodGet, "/readyz", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, storage, body["storage"])

			user := newClient(t, srv.URL)
			code, _ = user.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "ayse", "password": "hunter22"})
			require.Equal(t, http.StatusCreated, code)
			code, _ = user.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "ayse", "password": "hunter22"})
			require.Equal(t, http.StatusForbidden, code)

			admin := newClient(t, srv.URL)
			code, _ = admin.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "supersecret"})
			require.Equal(t, http.StatusOK, code)
			code, _ = admin.do(http.MethodPost, "/api/admin/users/ayse/approve", nil)
			require.Equal(t, http.StatusOK, code)

			code, _ = user.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "ayse", "password": "hunter22"})
			require.Equal(t, http.StatusOK, code)
			code, _ = user.do(http.MethodGet, "/api/admin/users", nil)
			assert.Equal(t, http.StatusForbidden, code)

			code, body = user.do(http.MethodGet, "/api/player/state", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, 150.0, state(t, body)["gold"])

			code, body = user.do(http.MethodPost, "/api/tasks", map[string]string{"text": "Run 5km", "difficulty": "hard", "category": "spor"})
			require.Equal(t, http.StatusCreated, code)
			tasks := state(t, body)["tasks"].([]any)
			require.Len(t, tasks, 1)
			taskID := tasks[0].(map[string]any)["id"].(string)
			assert.NotNil(t, state(t, body)["taskDeadline"])

			code, body = user.do(http.MethodPost, "/api/tasks/"+taskID+"/toggle", nil)
			require.Equal(t, http.StatusOK, code)
			st := state(t, body)
			assert.Equal(t, 350.0, st["gold"])
			assert.Nil(t, st["taskDeadline"])

			code, body = user.do(http.MethodPost, "/api/shop/purchase", map[string]string{"itemId": "potion_energy"})
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, 250.0, state(t, body)["gold"])

			code, body = user.do(http.MethodPost, "/api/inventory/use", map[string]string{"itemId": "potion_energy"})
			assert.Equal(t, http.StatusConflict, code)
			assert.Equal(t, "precondition_failed", body["kind"])

			code, body = user.do(http.MethodPost, "/api/boss/attack", nil)
			require.Equal(t, http.StatusOK, code)

			code, _ = user.do(http.MethodPost, "/api/tasks/suggest", map[string]string{"prompt": "spor"})
			assert.Equal(t, http.StatusServiceUnavailable, code)

			code, body = admin.do(http.MethodGet, "/api/admin/stats", nil)
			require.Equal(t, http.StatusOK, code)

			code, body = admin.do(http.MethodPost, "/api/admin/users/ayse/reset", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, 150.0, state(t, body)["gold"])

			code, body = anon.do(http.MethodGet, "/", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Contains(t, body["body"], "Gölge Lordu")
			assert.Contains(t, body["body"], "/api/boss/attack")
		})
	}
}

func TestServer_StorageSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, config.StorageSQLite)
	ctx := context.Background()

	app, err := New(ctx, Options{Config: cfg})
	require.NoError(t, err)
	require.NoError(t, app.Game.CreatePlayer(ctx, "mert"))
	require.NoError(t, app.Close())

	app, err = New(ctx, Options{Config: cfg})
	require.NoError(t, err)
	defer app.Close()
	names, err := app.stores.Players.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "mert"}, names)
}

func TestRouteRegistry_List(t *testing.T) {
	mux := http.NewServeMux()
	rr := &RouteRegistry{}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	Handle(mux, rr, "POST /b", accessSession, "", noop)
	Handle(mux, rr, "GET /b", accessSession, "", noop)
	Handle(mux, rr, "GET /a", accessPublic, "first", noop)

	got := rr.List()
	require.Len(t, got, 3)
	assert.Equal(t, RouteDoc{Method: "GET", Pattern: "/a", Summary: "first", Access: accessPublic}, got[0])
	assert.Equal(t, "GET", got[1].Method)
	assert.Equal(t, "POST", got[2].Method)
}
