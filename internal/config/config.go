// Package config loads WriteHub settings from defaults, an optional YAML
// file, .env files and WRITEHUB_* environment variables, in increasing
// priority.
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
)

const envPrefix = "WRITEHUB"

// Config represents the application configuration
type Config struct {
	DataDir   string         `mapstructure:"data_dir"`
	DBPath    string         `mapstructure:"db_path"`
	ExportDir string         `mapstructure:"export_dir"`
	Timezone  string         `mapstructure:"timezone"`
	Log       LogConfig      `mapstructure:"log"`
	Server    ServerConfig   `mapstructure:"server"`
	Defaults  DefaultsConfig `mapstructure:"defaults"`
}

// LogConfig selects the zap preset and level
type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultsConfig controls first-run seeding
type DefaultsConfig struct {
	Categories bool `mapstructure:"categories"`
}

// Options tune where Load looks
type Options struct {
	// ConfigFile is an explicit config path; empty searches . and ~/.writehub
	ConfigFile string
	// EnvFiles are loaded if present; nil means ".env"
	EnvFiles []string
}

// Load builds the configuration. Missing config and .env files are not errors.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	defaultDataDir := filepath.Join(home, ".writehub")

	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("export_dir", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("defaults.categories", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir, home)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "writehub.db")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "export")
	}
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.ExportDir = expandHome(cfg.ExportDir, home)

	return &cfg, nil
}

// Validate rejects settings the program cannot start with
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		errs = append(errs, fmt.Errorf("log.mode %q must be dev or prod", c.Log.Mode))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; "Local" and "" mean the system zone
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EnsureDirs creates the data directory and the database's parent
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, filepath.Dir(c.DBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
