package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backends understood by the CLI.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// StoreConfig selects where events live.
type StoreConfig struct {
	// Backend is "json" (one local file) or "sqlite" (a table scoped by owner).
	Backend    string `yaml:"backend"`
	JSONPath   string `yaml:"json_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ReminderConfig drives `journal watch`.
type ReminderConfig struct {
	// Schedule is a standard 5-field cron spec.
	Schedule    string `yaml:"schedule"`
	LeadMinutes int    `yaml:"lead_minutes"`
}

// Config is the top-level application configuration.
type Config struct {
	Store           StoreConfig    `yaml:"store"`
	Theme           string         `yaml:"theme"`
	LogLevel        string         `yaml:"log_level"`
	DefaultDuration int            `yaml:"default_duration"`
	Listen          string         `yaml:"listen"`
	Reminder        ReminderConfig `yaml:"reminder"`
}

// Dir is ~/.journal, home of the config, credentials and default data files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".journal"), nil
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    BackendJSON,
			JSONPath:   filepath.Join(dir, "events.json"),
			SQLitePath: filepath.Join(dir, "journal.db"),
		},
		Theme:           "classic",
		LogLevel:        "warn",
		DefaultDuration: 60,
		Listen:          "127.0.0.1:8080",
		Reminder: ReminderConfig{
			Schedule:    "*/5 * * * *",
			LeadMinutes: 15,
		},
	}
}

// Normalize fills zero values from the defaults rooted at dir and rejects
// values nothing downstream understands.
func (c *Config) Normalize(dir string) error {
	def := Default(dir)
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	case "":
		c.Store.Backend = def.Store.Backend
	default:
		return fmt.Errorf("config: unknown store backend %q (want %s or %s)", c.Store.Backend, BackendJSON, BackendSQLite)
	}
	if c.Store.JSONPath == "" {
		c.Store.JSONPath = def.Store.JSONPath
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = def.Store.SQLitePath
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = def.DefaultDuration
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = def.Reminder.Schedule
	}
	if c.Reminder.LeadMinutes <= 0 {
		c.Reminder.LeadMinutes = def.Reminder.LeadMinutes
	}
	return nil
}

// Load reads the YAML file at path, writing the defaults there on first run,
// then applies .env and JOURNAL_* environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	dir := filepath.Dir(path)

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = Default(dir)
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := cfg.Normalize(dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 perms via a temp file + rename.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	dir := filepath.Dir(path)
	if err := cfg.Normalize(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".journal-config-*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// loadDotEnv reads ./.env when present. Variables already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Store.Backend = getEnv("JOURNAL_STORE", c.Store.Backend)
	c.Store.JSONPath = getEnv("JOURNAL_JSON_PATH", c.Store.JSONPath)
	c.Store.SQLitePath = getEnv("JOURNAL_SQLITE_PATH", c.Store.SQLitePath)
	c.LogLevel = getEnv("JOURNAL_LOG_LEVEL", c.LogLevel)
	c.Listen = getEnv("JOURNAL_LISTEN", c.Listen)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
