package root

import (
	"context"
	"fmt"

	"github.com/xmuzan/samplepomodoro/internal/config"
	"github.com/xmuzan/samplepomodoro/internal/game"
	"github.com/xmuzan/samplepomodoro/internal/logging"
	"github.com/xmuzan/samplepomodoro/internal/progress"
	"github.com/xmuzan/samplepomodoro/internal/server"

	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

// openStores opens the configured stores for offline commands. The returned
// cleanup closes them.
func openStores(ctx context.Context) (*config.Config, *server.Stores, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	stores, err := server.OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, stores, func() { _ = stores.Close() }, nil
}

func openService(ctx context.Context) (*game.Service, *server.Stores, func(), error) {
	cfg, stores, cleanup, err := openStores(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := game.NewService(game.Options{
		Engine:  progress.NewEngine(cfg.Rules, progress.DefaultCatalog()),
		Players: stores.Players,
		Bosses:  stores.Bosses,
		BossID:  cfg.Boss.ID,
		Events:  stores.Events,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, stores, cleanup, nil
}
