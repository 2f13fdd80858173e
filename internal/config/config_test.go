package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Cookies)
	assert.Equal(t, "https://edge.allegro.pl", cfg.EdgeBaseURL)
	assert.Equal(t, "http://localhost:8191/v1", cfg.SolverURL)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.NotEmpty(t, cfg.UserAgent)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 90, cfg.HTTP.SolverTimeoutSeconds)
	assert.Equal(t, 15, cfg.HTTP.LazyTimeoutSeconds)
	assert.Equal(t, 2.0, cfg.HTTP.HostQPS)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Cookies = "session=abc; QXLSESSID=def"
	cfg.OutputFormat = "json"
	cfg.HTTP.TimeoutSeconds = 45

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "session=abc; QXLSESSID=def", loaded.Cookies)
	assert.Equal(t, "json", loaded.OutputFormat)
	assert.Equal(t, 45, loaded.HTTP.TimeoutSeconds)
	assert.Equal(t, 90, loaded.HTTP.SolverTimeoutSeconds)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ALLEGRO_COOKIES", "env=cookie")
	t.Setenv("ALLEGRO_OUTPUT_FORMAT", "tsv")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env=cookie", cfg.Cookies)
	assert.Equal(t, "tsv", cfg.OutputFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.OutputFormat = "yaml" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative lazy timeout",
			mutate:  func(c *Config) { c.HTTP.LazyTimeoutSeconds = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
			require.NoError(t, err)
			tt.mutate(&cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
