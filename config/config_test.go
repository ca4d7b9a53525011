package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/donutnomad/godiscover/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "godiscover.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoader(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) []string
		wantErr bool
		assert  func(t *testing.T, cfg Config)
	}{
		{
			name:  "returns defaults when no overrides",
			setup: func(t *testing.T) []string { return nil },
			assert: func(t *testing.T, cfg Config) {
				assert.Equal(t, ".", cfg.BasePath)
				assert.Equal(t, []string{"./..."}, cfg.Scan.Paths)
				assert.True(t, cfg.Cache.Enabled)
				assert.Equal(t, cache.DriverFile, cfg.Cache.Driver)
				assert.Equal(t, filepath.Join(".godiscover", "cache"), cfg.Cache.Path)
				assert.Zero(t, cfg.Cache.TTL)
				assert.Equal(t, "packages", cfg.Monorepo.Packages.Path)
				assert.Empty(t, cfg.Paths)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			name: "merges file overrides",
			setup: func(t *testing.T) []string {
				return []string{writeYAML(t, `
base_path: /srv/app
scan:
  paths: [./internal/..., ./cmd/...]
  workers: 4
cache:
  enabled: false
  ttl: 1h
monorepo:
  packages:
    path: libs
    namespace: example.com/acme/{package}
paths:
  cards: [app/cards]
  handlers: ["pkgs/*/src"]
log:
  format: json
`)}
			},
			assert: func(t *testing.T, cfg Config) {
				assert.Equal(t, "/srv/app", cfg.BasePath)
				assert.Equal(t, []string{"./internal/...", "./cmd/..."}, cfg.Scan.Paths)
				assert.Equal(t, 4, cfg.Scan.Workers)
				assert.False(t, cfg.Cache.Enabled)
				assert.Equal(t, time.Hour, cfg.Cache.TTL)
				assert.Equal(t, "libs", cfg.Monorepo.Packages.Path)
				assert.Equal(t, "example.com/acme/{package}", cfg.Monorepo.Packages.Namespace)
				// 未覆盖的键保留默认值
				assert.Equal(t, "modules", cfg.Monorepo.Modules.Path)
				assert.Equal(t, map[string][]string{
					"cards":    {"app/cards"},
					"handlers": {"pkgs/*/src"},
				}, cfg.Paths)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
		{
			name: "prefers env overrides",
			setup: func(t *testing.T) []string {
				t.Setenv("GODISCOVER_CACHE__ENABLED", "false")
				t.Setenv("GODISCOVER_BASE_PATH", "/env/base")
				t.Setenv("GODISCOVER_SCAN__PATHS", "./a/..., ./b")
				t.Setenv("GODISCOVER_PATHS__CARDS", "app/cards,pkgs/*/src")
				t.Setenv("GODISCOVER_CACHE__TTL", "90s")
				return []string{writeYAML(t, "cache:\n  enabled: true\nbase_path: /file/base\n")}
			},
			assert: func(t *testing.T, cfg Config) {
				assert.False(t, cfg.Cache.Enabled)
				assert.Equal(t, "/env/base", cfg.BasePath)
				assert.Equal(t, []string{"./a/...", "./b"}, cfg.Scan.Paths)
				assert.Equal(t, []string{"app/cards", "pkgs/*/src"}, cfg.Paths["cards"])
				assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
			},
		},
		{
			name: "fails on missing file",
			setup: func(t *testing.T) []string {
				return []string{filepath.Join(t.TempDir(), "missing.yaml")}
			},
			wantErr: true,
		},
		{
			name: "fails on unknown driver",
			setup: func(t *testing.T) []string {
				return []string{writeYAML(t, "cache:\n  driver: memcached\n")}
			},
			wantErr: true,
		},
		{
			name: "fails on bad log level",
			setup: func(t *testing.T) []string {
				t.Setenv("GODISCOVER_LOG__LEVEL", "loud")
				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := tt.setup(t)
			cfg, err := NewLoader(EnvPrefix, files...).Load(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.assert(t, cfg)
		})
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(EnvPrefix, writeYAML(t, "log:\n  level: debug\n")).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "negative workers", mutate: func(c *Config) { c.Scan.Workers = -1 }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: true},
		{name: "enabled without path", mutate: func(c *Config) { c.Cache.Path = "" }, wantErr: true},
		{name: "disabled without path", mutate: func(c *Config) { c.Cache.Path = ""; c.Cache.Enabled = false }},
		{name: "valkey without address", mutate: func(c *Config) { c.Cache.Driver = cache.DriverValkey }, wantErr: true},
		{name: "valkey", mutate: func(c *Config) {
			c.Cache.Driver = cache.DriverValkey
			c.Cache.Valkey.Address = "127.0.0.1:6379"
		}},
		{name: "empty path group", mutate: func(c *Config) { c.Paths["cards"] = nil }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "empty base path", mutate: func(c *Config) { c.BasePath = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BasePath = "/repo"
	cfg.Monorepo.Modules.Namespace = "example.com/mods/{module}"

	ns := cfg.Namespace()
	assert.Equal(t, "modules", ns.Modules.Path)
	assert.Equal(t, "example.com/mods/{module}", ns.Modules.Namespace)
	assert.Equal(t, "app", ns.App.Path)

	assert.Equal(t, filepath.Join("/repo", ".godiscover", "cache"), cfg.CacheConfig().Path)
	assert.Equal(t, "/abs", cfg.Abs("/abs"))
	assert.Equal(t, filepath.Join("/repo", "app"), cfg.Abs("app"))
	assert.Equal(t, "", cfg.Abs(""))
}
