package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
)

const routeTable = `
server:
  port: 8080
  read_timeout: 5s
log:
  level: debug
global_params:
  lang: en
  version: 2
routes:
  - template: users/:id
    target: user-profile
  - template: files/:path:/download
    target: download
    defaults:
      mode: inline
tracing:
  exporters:
    - otlp
    - console
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFactory_NewStore_WithFile(t *testing.T) {
	store, err := NewFactory().NewStore(domainconfig.WithConfigFile(writeConfig(t, routeTable)))
	require.NoError(t, err)

	t.Run("scalars", func(t *testing.T) {
		port, ok := store.GetInt("server.port")
		assert.True(t, ok)
		assert.Equal(t, 8080, port)

		timeout, ok := store.GetDuration("server.read_timeout")
		assert.True(t, ok)
		assert.Equal(t, 5*time.Second, timeout)

		level, ok := store.GetString("log.level")
		assert.True(t, ok)
		assert.Equal(t, "debug", level)
	})

	t.Run("slices and maps", func(t *testing.T) {
		exporters, ok := store.GetStringSlice("tracing.exporters")
		assert.True(t, ok)
		assert.Equal(t, []string{"otlp", "console"}, exporters)

		globals, ok := store.GetStringMap("global_params")
		assert.True(t, ok)
		assert.Equal(t, "en", globals["lang"])
		assert.EqualValues(t, 2, globals["version"])
	})

	t.Run("missing keys", func(t *testing.T) {
		_, ok := store.GetString("nope")
		assert.False(t, ok)
		_, ok = store.GetStringMap("nope")
		assert.False(t, ok)
		_, ok = store.GetBool("nope")
		assert.False(t, ok)
		assert.False(t, store.IsSet("nope"))
	})
}

func TestFactory_NewStore_MissingFile(t *testing.T) {
	_, err := NewFactory().NewStore(domainconfig.WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}

func TestFactory_NewStore_WithEnv(t *testing.T) {
	t.Setenv("ROUTABLE_SERVER_PORT", "9090")

	store, err := NewFactory().NewStore(
		domainconfig.WithEnvPrefix("ROUTABLE"),
		domainconfig.WithDefaults(map[string]interface{}{"server.port": 8080}),
	)
	require.NoError(t, err)

	port, ok := store.GetInt("server.port")
	assert.True(t, ok)
	assert.Equal(t, 9090, port)
}

func TestFactory_NewStore_WithDefaults(t *testing.T) {
	store, err := NewFactory().NewStore(
		domainconfig.WithDefaults(map[string]interface{}{"cache.enabled": true, "log.level": "info"}),
		domainconfig.WithDefaults(map[string]interface{}{"log.level": "warn"}),
	)
	require.NoError(t, err)

	enabled, ok := store.GetBool("cache.enabled")
	assert.True(t, ok)
	assert.True(t, enabled)

	level, _ := store.GetString("log.level")
	assert.Equal(t, "warn", level)

	require.NoError(t, store.Set("log.level", "error"))
	level, _ = store.GetString("log.level")
	assert.Equal(t, "error", level)
}

func TestStore_Unmarshal(t *testing.T) {
	store, err := NewFactory().NewStore(domainconfig.WithConfigFile(writeConfig(t, routeTable)))
	require.NoError(t, err)

	type entry struct {
		Template string            `mapstructure:"template"`
		Target   string            `mapstructure:"target"`
		Defaults map[string]string `mapstructure:"defaults"`
	}

	var routes []entry
	require.NoError(t, store.UnmarshalKey("routes", &routes))
	assert.Equal(t, []entry{
		{Template: "users/:id", Target: "user-profile"},
		{Template: "files/:path:/download", Target: "download", Defaults: map[string]string{"mode": "inline"}},
	}, routes)

	var all struct {
		Server struct {
			Port        int           `mapstructure:"port"`
			ReadTimeout time.Duration `mapstructure:"read_timeout"`
		} `mapstructure:"server"`
	}
	require.NoError(t, store.Unmarshal(&all))
	assert.Equal(t, 8080, all.Server.Port)
	assert.Equal(t, 5*time.Second, all.Server.ReadTimeout)
}

func TestStore_ReadConfigPicksUpChanges(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	store, err := NewFactory().NewStore(domainconfig.WithConfigFile(path))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	require.NoError(t, store.ReadConfig())

	level, _ := store.GetString("log.level")
	assert.Equal(t, "error", level)
}
