package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/progress"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig   `yaml:"server" json:"server"`
	Log     LogConfig      `yaml:"log" json:"log"`
	Admin   AdminConfig    `yaml:"admin" json:"admin"`
	Rules   progress.Rules `yaml:"rules" json:"rules"`
	Boss    BossConfig     `yaml:"boss" json:"boss"`
	Suggest SuggestConfig  `yaml:"suggest" json:"suggest"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" json:"addr"`
	DataDir        string        `yaml:"data_dir" json:"data_dir"`
	Storage        string        `yaml:"storage" json:"storage"`
	SQLitePath     string        `yaml:"sqlite_path" json:"sqlite_path"`
	CookieName     string        `yaml:"cookie_name" json:"cookie_name"`
	CookieSecure   bool          `yaml:"cookie_secure" json:"cookie_secure"`
	CookieSameSite string        `yaml:"cookie_same_site" json:"cookie_same_site"`
	SessionTTL     time.Duration `yaml:"session_ttl" json:"session_ttl"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" json:"shutdown_grace"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// AdminConfig names the account created active with the admin flag on first start.
type AdminConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
}

type BossConfig struct {
	ID    string  `yaml:"id" json:"id"`
	Name  string  `yaml:"name" json:"name"`
	MaxHP float64 `yaml:"max_hp" json:"max_hp"`
}

type SuggestConfig struct {
	APIKey string `yaml:"api_key" json:"-"`
	Model  string `yaml:"model" json:"model"`
}

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.DataDir == "" {
		s.DataDir = "data"
	}
	if s.Storage == "" {
		s.Storage = StorageFile
	}
	if s.CookieName == "" {
		s.CookieName = "levelup_session"
	}
	if s.CookieSameSite == "" {
		s.CookieSameSite = "lax"
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 30 * 24 * time.Hour
	}
	if s.ShutdownGrace <= 0 {
		s.ShutdownGrace = 10 * time.Second
	}
}

func (l *LogConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
}

func (b *BossConfig) ApplyDefaults() {
	d := progress.DefaultBoss()
	if b.ID == "" {
		b.ID = d.ID
	}
	if b.Name == "" {
		b.Name = d.Name
	}
	if b.MaxHP <= 0 {
		b.MaxHP = d.MaxHP
	}
}

func (s *SuggestConfig) ApplyDefaults() {
	if s.Model == "" {
		s.Model = "gemini-2.5-flash"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Log.ApplyDefaults()
	c.Boss.ApplyDefaults()
	c.Suggest.ApplyDefaults()
	c.Rules = c.Rules.WithDefaults()
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Server.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("server.storage must be %q or %q, got %q", StorageFile, StorageSQLite, c.Server.Storage)
	}
	if c.Admin.Username != "" && len(c.Admin.Password) < 8 {
		return errors.New("admin.password must be at least 8 characters")
	}
	return c.Rules.Validate()
}

// BossSeed returns the seed record for the shared boss.
func (c *Config) BossSeed() progress.BossState {
	return progress.BossState{ID: c.Boss.ID, Name: c.Boss.Name, MaxHP: c.Boss.MaxHP, HP: c.Boss.MaxHP}
}

func Default() *Config {
	c := &Config{Rules: progress.DefaultRules()}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	r := Config{Rules: progress.DefaultRules()}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &r); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	r.ApplyDefaults()
	return &r, nil
}
