package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".writehub"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".writehub", "writehub.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".writehub", "export"), cfg.ExportDir)
	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.True(t, cfg.Defaults.Categories)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "writehub.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"data_dir: /srv/writehub\ntimezone: UTC\nlog:\n  mode: prod\nserver:\n  addr: :9000\n"), 0o644))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("WRITEHUB_DEFAULTS_CATEGORIES=false\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("WRITEHUB_DEFAULTS_CATEGORIES") })

	t.Setenv("WRITEHUB_SERVER_ADDR", "127.0.0.1:7000")

	cfg, err := Load(Options{ConfigFile: file, EnvFiles: []string{envFile, filepath.Join(dir, "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, "/srv/writehub", cfg.DataDir)
	assert.Equal(t, "/srv/writehub/writehub.db", cfg.DBPath)
	assert.Equal(t, "prod", cfg.Log.Mode)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr, "environment beats the file")
	assert.False(t, cfg.Defaults.Categories)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadBadFile(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server: [unterminated"), 0o644))

	_, err := Load(Options{ConfigFile: file})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		DBPath:   "x.db",
		Timezone: "Mars/Olympus",
		Log:      LogConfig{Mode: "loud"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
	assert.Contains(t, err.Error(), "log.mode")
	assert.Contains(t, err.Error(), "server.addr")

	cfg = Config{DBPath: "x.db", Timezone: "UTC", Log: LogConfig{Mode: "prod"}, Server: ServerConfig{Addr: ":1"}}
	assert.NoError(t, cfg.Validate())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h/notes", expandHome("~/notes", "/h"))
	assert.Equal(t, "/h", expandHome("~", "/h"))
	assert.Equal(t, "/abs", expandHome("/abs", "/h"))
}
