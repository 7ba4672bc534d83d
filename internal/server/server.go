package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/auth"
	"github.com/xmuzan/samplepomodoro/internal/config"
	"github.com/xmuzan/samplepomodoro/internal/game"
	"github.com/xmuzan/samplepomodoro/internal/httpmw"
	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/suggest"
	staticfiles "github.com/xmuzan/samplepomodoro/static"

	"go.uber.org/zap"
)

type Options struct {
	Config *config.Config
	// Stores is opened from Config when nil. Stores passed in are not closed by App.Close.
	Stores    *Stores
	Logger    *zap.Logger
	Clock     game.Clock
	Suggester suggest.Suggester
}

// App is the wired HTTP application.
type App struct {
	Handler http.Handler
	Game    *game.Service
	Auth    *auth.Service
	Routes  *RouteRegistry

	stores  *Stores
	clock   game.Clock
	storage string
	logger  *zap.Logger
	closers []func() error
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}

	a := &App{
		Routes:  &RouteRegistry{},
		clock:   opts.Clock,
		storage: cfg.Server.Storage,
		logger:  opts.Logger,
	}

	stores := opts.Stores
	if stores == nil {
		var err error
		stores, err = OpenStores(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, stores.Close)
	}
	a.stores = stores

	engine := progress.NewEngine(cfg.Rules, progress.DefaultCatalog())
	svc, err := game.NewService(game.Options{
		Engine:  engine,
		Players: stores.Players,
		Bosses:  stores.Bosses,
		BossID:  cfg.Boss.ID,
		Events:  stores.Events,
		Clock:   opts.Clock,
		Logger:  opts.Logger.Named("game"),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Game = svc

	a.Auth = auth.NewService(stores.Auth, opts.Logger.Named("auth"), auth.Options{
		CookieName:     cfg.Server.CookieName,
		CookieSecure:   cfg.Server.CookieSecure,
		CookieSameSite: cfg.Server.CookieSameSite,
		SessionTTL:     cfg.Server.SessionTTL,
	})
	if err := a.bootstrapAdmin(ctx, cfg.Admin); err != nil {
		_ = a.Close()
		return nil, err
	}

	suggester := opts.Suggester
	if suggester == nil && cfg.Suggest.APIKey != "" {
		g, err := suggest.NewGemini(ctx, cfg.Suggest.APIKey, cfg.Suggest.Model)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		suggester = g
	}

	a.Handler = httpmw.Chain(
		a.routes(suggester),
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger.Named("http")),
		httpmw.WithRecover(opts.Logger),
	)
	return a, nil
}

// bootstrapAdmin makes sure the configured admin account exists, is active and has a record.
func (a *App) bootstrapAdmin(ctx context.Context, ac config.AdminConfig) error {
	if ac.Username == "" {
		return nil
	}
	u, _, err := a.Auth.EnsureAdmin(ac.Username, ac.Password, a.clock.Now())
	if err != nil {
		return err
	}
	return a.Game.CreatePlayer(ctx, u.Username)
}

func (a *App) routes(sg suggest.Suggester) http.Handler {
	mux := http.NewServeMux()
	rr := a.Routes

	authHandler := auth.NewHandler(a.Auth)
	authHandler.SetRegisterHook(func(ctx context.Context, u auth.User) error {
		return a.Game.CreatePlayer(ctx, u.Username)
	})
	gameHandler := game.NewHandler(a.Game)
	suggestHandler := suggest.NewHandler(sg, a.logger.Named("suggest"))

	public := func(pattern, summary string, h http.HandlerFunc) {
		Handle(mux, rr, pattern, accessPublic, summary, h)
	}
	session := func(pattern, summary string, h http.HandlerFunc) {
		Handle(mux, rr, pattern, accessSession, summary, a.Auth.RequireAPI(h))
	}
	admin := func(pattern, summary string, h http.HandlerFunc) {
		Handle(mux, rr, pattern, accessAdmin, summary, a.Auth.RequireAPI(a.Auth.RequireAdmin(h)))
	}

	public("GET /healthz", "liveness", a.handleHealthz)
	public("GET /readyz", "storage readiness", a.handleReadyz)
	public("GET /{$}", "status page", a.handleStatusPage)
	public("GET /api/routes", "this table as JSON", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "routes": rr.List()})
	})
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticfiles.EmbeddedFS()))))

	public("POST /api/auth/register", "create a pending account", authHandler.Register)
	public("POST /api/auth/login", "start a session", authHandler.Login)
	public("GET /api/auth/session", "current session", authHandler.Session)
	public("POST /api/auth/logout", "end the session", authHandler.Logout)

	session("GET /api/player/state", "progress record and timers", gameHandler.State)
	session("POST /api/tasks", "create a task", gameHandler.CreateTask)
	session("POST /api/tasks/suggest", "suggest a task name", suggestHandler.SuggestTaskName)
	session("POST /api/tasks/{id}/toggle", "complete or undo a task", gameHandler.ToggleTask)
	session("DELETE /api/tasks/{id}", "delete a task", gameHandler.DeleteTask)
	session("GET /api/reports", "report actions", gameHandler.Reports)
	session("POST /api/reports", "report a behavior", gameHandler.Report)
	session("GET /api/shop", "shop catalog", gameHandler.Shop)
	session("POST /api/shop/purchase", "buy an item", gameHandler.Purchase)
	session("POST /api/inventory/use", "use an item", gameHandler.UseItem)
	session("POST /api/inventory/discard", "discard an item", gameHandler.DiscardItem)
	session("POST /api/attributes/spend", "spend an attribute point", gameHandler.SpendAttribute)
	session("GET /api/boss", "shared boss", gameHandler.Boss)
	session("POST /api/boss/attack", "attack the boss", gameHandler.AttackBoss)

	admin("GET /api/admin/users", "list accounts", authHandler.AdminUsers)
	admin("POST /api/admin/users/{username}/approve", "activate a pending account", authHandler.AdminApprove)
	admin("POST /api/admin/users/{username}/reset", "reset progress", gameHandler.AdminReset)
	admin("GET /api/admin/stats", "telemetry summary", gameHandler.AdminStats)

	return mux
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "levelup",
		"time":    a.clock.Now().UTC().Format(time.RFC3339),
	})
}

func (a *App) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.stores.Ping(r.Context()); err != nil {
		a.logger.Warn("readyz_failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "storage unavailable"})
		return
	}
	if _, err := a.Game.Boss(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "boss storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "levelup",
		"storage": a.storage,
		"time":    a.clock.Now().UTC().Format(time.RFC3339),
	})
}

// Close releases the stores and clients opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
