package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ModePoll, cfg.App.Mode)
	assert.Equal(t, 5, cfg.App.PollInterval)
	assert.Equal(t, 3, cfg.Docker.RetrySteps)
	assert.False(t, cfg.Docker.DNSNames)
	assert.Equal(t, WriteModeTruncate, cfg.Hosts.WriteMode)
	assert.Equal(t, LockBackendLocal, cfg.Lock.Backend)
	assert.True(t, cfg.Hosts.Watch)
	assert.NotEmpty(t, cfg.Hosts.Path)
	assert.Equal(t, []string{"localhost:2379"}, cfg.Etcd.Endpoints)
}

func TestInitConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  network: frontend
  termination_map: "lb:backend"
  mode: events
hosts:
  path: /tmp/hosts
  session: blue
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	require.NoError(t, InitConfig(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "frontend", cfg.App.Network)
	assert.Equal(t, "lb:backend", cfg.App.TerminationMap)
	assert.Equal(t, ModeEvents, cfg.App.Mode)
	assert.Equal(t, "/tmp/hosts", cfg.Hosts.Path)
	assert.Equal(t, "blue", cfg.Hosts.Session)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := InitConfig(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInitConfigLegacyEnv(t *testing.T) {
	t.Setenv("hosts_path", "/srv/hosts")
	t.Chdir(t.TempDir())

	v := viper.New()
	require.NoError(t, InitConfig(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/hosts", cfg.Hosts.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"unknown mode", func(c *Config) { c.App.Mode = "push" }, "app.mode"},
		{"unknown write mode", func(c *Config) { c.Hosts.WriteMode = "append" }, "hosts.write_mode"},
		{"unknown lock backend", func(c *Config) { c.Lock.Backend = "zookeeper" }, "lock.backend"},
		{"zero poll interval", func(c *Config) { c.App.PollInterval = 0 }, "app.poll_interval"},
		{"empty path", func(c *Config) { c.Hosts.Path = "" }, "hosts.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			cfg, err := Load(v)
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			var invalid *InvalidError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.key, invalid.Key)
		})
	}
}
