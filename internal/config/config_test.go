package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Import, cfg.Import)
	require.Empty(t, info.Path)
	require.False(t, info.PortSpecified)
}

func TestLoadConfig_TomlThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[server]
port = 9000

[import]
max_rows = 100
workers = 2

[log]
format = "json"
`)
	t.Setenv("BOQDESK_WORKERS", "6")
	t.Setenv("BOQDESK_JWT_SECRET", "s3cret")

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	require.Equal(t, path, info.Path)
	require.True(t, info.PortSpecified)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 100, cfg.Import.MaxRows)
	require.Equal(t, 6, cfg.Import.Workers)
	require.Equal(t, 500, cfg.Import.ParallelThreshold, "unset keys keep their defaults")
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvPortCountsAsSpecified(t *testing.T) {
	t.Setenv("BOQDESK_PORT", "8088")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.Equal(t, 8088, cfg.Server.Port)
	require.True(t, info.PortSpecified)
}

func TestLoadConfig_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[server\nport = ")

	_, _, err := LoadConfigWithInfo(path)
	require.Error(t, err)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.Data.DataDir, dir)
	require.DirExists(t, dir)
	require.Equal(t, filepath.Join(dir, "boqdesk.db"), DatabasePath(dir))
}
