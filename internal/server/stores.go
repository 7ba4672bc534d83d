package server

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/xmuzan/samplepomodoro/internal/auth"
	"github.com/xmuzan/samplepomodoro/internal/config"
	"github.com/xmuzan/samplepomodoro/internal/player"
	"github.com/xmuzan/samplepomodoro/internal/storage"
	"github.com/xmuzan/samplepomodoro/internal/telemetry"
	"github.com/xmuzan/samplepomodoro/internal/world"
)

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Players player.Repo
	Bosses  world.BossRepo
	Auth    auth.Repo
	Events  telemetry.Repository

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores builds the repositories named by cfg.Server.Storage.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Server.Storage {
	case config.StorageSQLite:
		return openSQLiteStores(ctx, cfg)
	case config.StorageFile, "":
		return openFileStores(cfg)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Server.Storage)
	}
}

func openFileStores(cfg *config.Config) (*Stores, error) {
	dir := cfg.Server.DataDir
	players, err := player.NewFileRepo(filepath.Join(dir, "player"), cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("player store: %w", err)
	}
	bosses, err := world.NewFileRepo(filepath.Join(dir, "world"), cfg.BossSeed())
	if err != nil {
		return nil, fmt.Errorf("boss store: %w", err)
	}
	authRepo, err := auth.NewFileRepo(filepath.Join(dir, "auth"))
	if err != nil {
		return nil, fmt.Errorf("auth store: %w", err)
	}
	return &Stores{
		Players: players,
		Bosses:  bosses,
		Auth:    authRepo,
		Events:  telemetry.NewMemoryRepository(),
	}, nil
}

func openSQLiteStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	path := cfg.Server.SQLitePath
	if path == "" {
		path = filepath.Join(cfg.Server.DataDir, "levelup.db")
	}
	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Players: storage.NewPlayerRepo(db, cfg.Rules),
		Bosses:  storage.NewBossRepo(db, cfg.BossSeed()),
		Auth:    storage.NewAuthRepo(db),
		Events:  storage.NewEventRepo(db),
		ping:    func(ctx context.Context) error { return pingDB(ctx, db) },
		close:   db.Close,
	}, nil
}

func pingDB(ctx context.Context, db *sql.DB) error {
	var one int
	return db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}
