package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: 4000\nhistory_limit: 25\ndelivery_timeout: 750ms\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("RELAYCHAT_LOG_LEVEL", "warn")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.DeliveryTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadHonoursPortEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("PORT", "8088")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, ":8088", cfg.Addr())
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Port: 9000, LogLevel: "debug"})

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().DatabasePath, cfg.DatabasePath)
	assert.Equal(t, Default().SendBuffer, cfg.SendBuffer)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	bad := Default()
	bad.Port = 70000
	bad.SendBuffer = 0
	bad.DatabasePath = ""
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "send_buffer")
	assert.Contains(t, err.Error(), "database_path")
}
