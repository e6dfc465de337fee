package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("WGW_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "modern", cfg.Engine.Edition)
	assert.Equal(t, "7.0.9", cfg.Engine.EngineVersion())
	assert.Equal(t, "yaml", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, 15*time.Second, cfg.EventBus.MetricsInterval)
	assert.Equal(t, 5*time.Minute, cfg.Engine.AutosaveInterval)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
engine:
  edition: legacy
  version: "6.2.2"
  worlds: [lobby]
  removal_strategy: unset_parent
  flags:
    - name: shop-open
      type: boolean
      default: true
storage:
  driver: sql
  sql:
    dialect: sqlite
    dsn: ":memory:"
eventbus:
  driver: jetstream
  jetstream:
    url: nats://nats:4222
    stream: REGIONS
server:
  http_port: 9000
logging:
  level: debug
`)
	t.Setenv("WGW_CONFIG", path)
	t.Setenv("WGW_WORLDS", "lobby,arena")
	t.Setenv("WGW_SQL_DSN", "file:test.db")
	t.Setenv("WGW_NATS_STREAM", "OVERRIDE")
	t.Setenv("WGW_AUTOSAVE_INTERVAL", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.Engine.Edition)
	assert.Equal(t, "6.2.2", cfg.Engine.EngineVersion())
	assert.Equal(t, []string{"lobby", "arena"}, cfg.Engine.Worlds)
	assert.Equal(t, "sqlite", cfg.Storage.SQL.Dialect)
	assert.Equal(t, "file:test.db", cfg.Storage.SQL.DSN)
	assert.Equal(t, "nats://nats:4222", cfg.EventBus.JetStream.URL)
	assert.Equal(t, "OVERRIDE", cfg.EventBus.JetStream.Stream)
	assert.Equal(t, 9000, cfg.Server.GetHTTPPort())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Engine.AutosaveInterval)

	removal, err := cfg.Engine.Removal()
	require.NoError(t, err)
	assert.Equal(t, protection.UnsetParentInChildren, removal)

	require.Len(t, cfg.Engine.Flags, 1)
	def, err := cfg.Engine.Flags[0].DefaultValue()
	require.NoError(t, err)
	assert.Equal(t, true, def)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine: [broken"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine:\n  removal_strategy: explode\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine:\n  autosave_interval: -1m\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine:\n  flags:\n    - name: x\n      type: color\n"))
	assert.Error(t, err)
}

func TestServerConfig_PortFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("WGW_HTTP_PORT", "")
	assert.Equal(t, 8088, s.GetHTTPPort())

	t.Setenv("WGW_HTTP_PORT", "7070")
	assert.Equal(t, 7070, s.GetHTTPPort())

	t.Setenv("WGW_HTTP_PORT", "nope")
	assert.Equal(t, 8088, s.GetHTTPPort())
}

func TestCustomFlag_DefaultValue(t *testing.T) {
	cases := []struct {
		flag CustomFlag
		want any
	}{
		{CustomFlag{Name: "a", Type: "state", Default: "DENY"}, flag.Deny},
		{CustomFlag{Name: "b", Type: "double", Default: 2}, 2.0},
		{CustomFlag{Name: "c", Type: "double", Default: 2.5}, 2.5},
		{CustomFlag{Name: "d", Type: "integer", Default: 7}, 7},
		{CustomFlag{Name: "e", Type: "string", Default: "hi"}, "hi"},
		{CustomFlag{Name: "f", Type: "set"}, nil},
	}
	for _, tc := range cases {
		got, err := tc.flag.DefaultValue()
		require.NoError(t, err, tc.flag.Name)
		assert.Equal(t, tc.want, got, tc.flag.Name)
	}

	_, err := CustomFlag{Name: "g", Type: "integer", Default: "seven"}.DefaultValue()
	assert.True(t, errors.Is(err, flag.ErrValueType))
	_, err = CustomFlag{Name: "h", Type: "state", Default: "maybe"}.DefaultValue()
	assert.True(t, errors.Is(err, flag.ErrValueType))
}
