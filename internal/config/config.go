// Package config loads habitquest settings from config.yaml, .env files and
// HABITQUEST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/utils"
)

const (
	KeyBackend      = "storage.backend"
	KeyPath         = "storage.path"
	KeyDSN          = "storage.dsn"
	KeyTimezone     = "app.timezone"
	KeyDebug        = "app.debug"
	KeyToastSeconds = "notifications.toast_seconds"
	KeyMaxBackups   = "backup.max_backups"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path is the data file for the json and sqlite backends, relative to the config dir.
	Path string `mapstructure:"path" yaml:"path"`
	// DSN is the PostgreSQL connection string. Credentials belong in the keyring, not here.
	DSN string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

type AppConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

type NotificationsConfig struct {
	ToastSeconds int `mapstructure:"toast_seconds" yaml:"toast_seconds"`
}

type BackupConfig struct {
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

type Config struct {
	Storage       StorageConfig       `mapstructure:"storage" yaml:"storage"`
	App           AppConfig           `mapstructure:"app" yaml:"app"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Backup        BackupConfig        `mapstructure:"backup" yaml:"backup"`

	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-" yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: constants.BackendSQLite,
			Path:    constants.DefaultDataFile,
		},
		App:           AppConfig{Timezone: "Local"},
		Notifications: NotificationsConfig{ToastSeconds: int(constants.DefaultToastDuration / time.Second)},
		Backup:        BackupConfig{MaxBackups: constants.MaxBackups},
	}
}

// DefaultDir returns the per-user config directory, ~/.config/habitquest on Linux.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, constants.AppName), nil
}

// Load reads the config in dir, writing a default config.yaml on first run.
// Values from .env files and HABITQUEST_* variables override the file.
func Load(dir string) (*Config, error) {
	dir = expandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := loadDotEnv(filepath.Join(dir, ".env"), ".env"); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, constants.ConfigFileName+"."+constants.ConfigFileType)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteFile(path, Default()); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType(constants.ConfigFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Dir = dir
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyBackend, d.Storage.Backend)
	v.SetDefault(KeyPath, d.Storage.Path)
	v.SetDefault(KeyDSN, d.Storage.DSN)
	v.SetDefault(KeyTimezone, d.App.Timezone)
	v.SetDefault(KeyDebug, d.App.Debug)
	v.SetDefault(KeyToastSeconds, d.Notifications.ToastSeconds)
	v.SetDefault(KeyMaxBackups, d.Backup.MaxBackups)
}

// loadDotEnv loads the files that exist. Variables already set in the
// environment win.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case constants.BackendJSON, constants.BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: %s is required for the %s backend", ErrInvalidConfig, KeyPath, c.Storage.Backend)
		}
	case constants.BackendPostgres:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if !utils.ValidateTimezone(c.App.Timezone) {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.App.Timezone)
	}
	if c.Notifications.ToastSeconds <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeyToastSeconds)
	}
	if c.Backup.MaxBackups < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, KeyMaxBackups)
	}
	return nil
}

// DataPath returns the absolute data file path for file backed stores.
func (c *Config) DataPath() string {
	p := expandHome(c.Storage.Path)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Notifications.ToastSeconds) * time.Second
}

// WriteFile writes cfg as YAML to path.
func WriteFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# habitquest configuration\n# Environment variables named HABITQUEST_<SECTION>_<KEY> override these values.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
