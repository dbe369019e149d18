package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setDirs points the audio directories at a temporary location.
func setDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MIXDOWN_ASSETS_PATH", filepath.Join(dir, "assets"))
	t.Setenv("MIXDOWN_OUTPUT_PATH", filepath.Join(dir, "output"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := setDirs(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 7*24*time.Hour, cfg.Audio.MixRetention)
	assert.Equal(t, 3600.0, cfg.Audio.MixMaxSeconds)
	assert.Empty(t, cfg.Audio.FetchAllowedHosts)
	assert.False(t, cfg.Audio.FetchAllowPrivate)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.False(t, cfg.IsProduction())
	assert.DirExists(t, filepath.Join(dir, "assets"))
	assert.DirExists(t, filepath.Join(dir, "output"))
}

func TestLoad_Overrides(t *testing.T) {
	setDirs(t)
	t.Setenv("MIXDOWN_SAMPLE_RATE", "48000")
	t.Setenv("MIXDOWN_MIX_RETENTION", "48h")
	t.Setenv("MIXDOWN_MAX_MIX_SECONDS", "900.5")
	t.Setenv("MIXDOWN_FETCH_ALLOWED_HOSTS", "cdn.zuidwest.nl, assets.internal ,")
	t.Setenv("MIXDOWN_CACHE_DRIVER", "redis")
	t.Setenv("MIXDOWN_MINIO_USE_SSL", "true")
	t.Setenv("MIXDOWN_PREVIEW_COMMAND", "ffplay")
	t.Setenv("MIXDOWN_PREVIEW_ARGS", "-f s16le -ar {rate} -i pipe:0")
	t.Setenv("MIXDOWN_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 48*time.Hour, cfg.Audio.MixRetention)
	assert.Equal(t, 900.5, cfg.Audio.MixMaxSeconds)
	assert.Equal(t, []string{"cdn.zuidwest.nl", "assets.internal"}, cfg.Audio.FetchAllowedHosts)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.True(t, cfg.Storage.MinioUseSSL)
	assert.Equal(t, []string{"-f", "s16le", "-ar", "{rate}", "-i", "pipe:0"}, cfg.Preview.Args)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"sample rate", "MIXDOWN_SAMPLE_RATE", "0"},
		{"environment", "MIXDOWN_ENV", "staging"},
		{"storage driver", "MIXDOWN_STORAGE_DRIVER", "s3"},
		{"cache driver", "MIXDOWN_CACHE_DRIVER", "memcached"},
		{"zero mix length", "MIXDOWN_MAX_MIX_SECONDS", "0"},
		{"infinite mix length", "MIXDOWN_MAX_MIX_SECONDS", "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setDirs(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
