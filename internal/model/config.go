package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// envPrefix is prepended to every environment override,
// e.g. TASKREMINDER_STORAGE_BACKEND.
const envPrefix = "TASKREMINDER"

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	DB   int    `mapstructure:"db" yaml:"db"`
	Key  string `mapstructure:"key" yaml:"key"`

	// PasswordKeyringKey names the OS keyring entry holding the password.
	// Empty means no authentication.
	PasswordKeyringKey string `mapstructure:"password_keyring_key" yaml:"password_keyring_key"`
}

// StorageConfig selects and configures the task store.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "redis".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the tasks file for the file backend or the database file
	// for the sqlite backend.
	Path string `mapstructure:"path" yaml:"path"`

	// WriteTimeoutSec bounds a single persist call.
	WriteTimeoutSec int `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`

	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// ReminderConfig holds the reminder policy and poller settings.
type ReminderConfig struct {
	PollIntervalSec            int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	LeadMinutes                int `mapstructure:"lead_minutes" yaml:"lead_minutes"`
	CooldownMinutes            int `mapstructure:"cooldown_minutes" yaml:"cooldown_minutes"`
	DefaultManualOffsetMinutes int `mapstructure:"default_manual_offset_minutes" yaml:"default_manual_offset_minutes"`
	DeliveryTimeoutSec         int `mapstructure:"delivery_timeout_sec" yaml:"delivery_timeout_sec"`

	// Bells is how many times the terminal bell rings per reminder.
	Bells int `mapstructure:"bells" yaml:"bells"`
}

// NotificationConfig controls where fired reminders are recorded.
type NotificationConfig struct {
	// DBPath is a sqlite file for the persistent reminder log. Empty keeps
	// the log in memory only, unless the storage backend is sqlite.
	DBPath      string `mapstructure:"db_path" yaml:"db_path"`
	HistorySize int    `mapstructure:"history_size" yaml:"history_size"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File receives log output when set. The TUI always logs to a file
	// so output does not corrupt the screen.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage       StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Reminders     ReminderConfig     `mapstructure:"reminders" yaml:"reminders"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/taskreminder, or "." when the home
// directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskreminder")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskreminder/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:         BackendFile,
			Path:            filepath.Join(ConfigDir(), "tasks.json"),
			WriteTimeoutSec: 5,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "taskreminder:tasks",
			},
		},
		Reminders: ReminderConfig{
			PollIntervalSec:            30,
			LeadMinutes:                30,
			CooldownMinutes:            10,
			DefaultManualOffsetMinutes: 15,
			DeliveryTimeoutSec:         10,
			Bells:                      2,
		},
		Notifications: NotificationConfig{
			HistorySize: 10,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}

// setDefaults registers every key so missing keys resolve to sensible
// values and environment overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.write_timeout_sec", d.Storage.WriteTimeoutSec)
	v.SetDefault("storage.redis.addr", d.Storage.Redis.Addr)
	v.SetDefault("storage.redis.db", d.Storage.Redis.DB)
	v.SetDefault("storage.redis.key", d.Storage.Redis.Key)
	v.SetDefault("storage.redis.password_keyring_key", d.Storage.Redis.PasswordKeyringKey)
	v.SetDefault("reminders.poll_interval_sec", d.Reminders.PollIntervalSec)
	v.SetDefault("reminders.lead_minutes", d.Reminders.LeadMinutes)
	v.SetDefault("reminders.cooldown_minutes", d.Reminders.CooldownMinutes)
	v.SetDefault("reminders.default_manual_offset_minutes", d.Reminders.DefaultManualOffsetMinutes)
	v.SetDefault("reminders.delivery_timeout_sec", d.Reminders.DeliveryTimeoutSec)
	v.SetDefault("reminders.bells", d.Reminders.Bells)
	v.SetDefault("notifications.db_path", d.Notifications.DBPath)
	v.SetDefault("notifications.history_size", d.Notifications.HistorySize)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TASKREMINDER_ override file values.
// If the file does not exist, defaults plus environment are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Storage.Path = ExpandHome(cfg.Storage.Path)
	cfg.Notifications.DBPath = ExpandHome(cfg.Notifications.DBPath)
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("reminders", cfg.Reminders)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Validate rejects configurations the application cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for the %s backend", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" || c.Storage.Redis.Key == "" {
			return fmt.Errorf("storage.redis.addr and storage.redis.key must be set")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.WriteTimeoutSec <= 0 {
		return fmt.Errorf("storage.write_timeout_sec must be positive")
	}
	r := c.Reminders
	if r.PollIntervalSec <= 0 {
		return fmt.Errorf("reminders.poll_interval_sec must be positive")
	}
	if r.LeadMinutes <= 0 || r.CooldownMinutes <= 0 {
		return fmt.Errorf("reminders.lead_minutes and reminders.cooldown_minutes must be positive")
	}
	if r.DefaultManualOffsetMinutes < 0 {
		return fmt.Errorf("reminders.default_manual_offset_minutes must not be negative")
	}
	if r.DeliveryTimeoutSec <= 0 {
		return fmt.Errorf("reminders.delivery_timeout_sec must be positive")
	}
	if r.Bells < 0 {
		return fmt.Errorf("reminders.bells must not be negative")
	}
	if c.Notifications.HistorySize <= 0 {
		return fmt.Errorf("notifications.history_size must be positive")
	}
	return nil
}

// PollInterval returns the poller interval as a duration.
func (r ReminderConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalSec) * time.Second
}

// Lead returns the due-soon window.
func (r ReminderConfig) Lead() time.Duration {
	return time.Duration(r.LeadMinutes) * time.Minute
}

// Cooldown returns the minimum spacing between automatic reminders.
func (r ReminderConfig) Cooldown() time.Duration {
	return time.Duration(r.CooldownMinutes) * time.Minute
}

// DeliveryTimeout bounds one notification delivery.
func (r ReminderConfig) DeliveryTimeout() time.Duration {
	return time.Duration(r.DeliveryTimeoutSec) * time.Second
}

// WriteTimeout bounds one persist call.
func (s StorageConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
